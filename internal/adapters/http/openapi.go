package httpadapter

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	legacyrouter "github.com/getkin/kin-openapi/routers/legacy"
)

//go:embed openapi.yaml
var openapiSpec []byte

// apiContract is loaded once at init. A malformed embedded document is a
// build defect, so failing loudly here beats serving without validation.
var apiContract = mustLoadAPIContract()

type apiContractData struct {
	router routers.Router
	json   []byte
}

func mustLoadAPIContract() *apiContractData {
	contract, err := loadAPIContract()
	if err != nil {
		panic(fmt.Sprintf("httpadapter: %v", err))
	}
	return contract
}

func loadAPIContract() (*apiContractData, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	router, err := legacyrouter.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	jsonDoc, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal openapi document: %w", err)
	}
	return &apiContractData{router: router, json: jsonDoc}, nil
}

// requestValidationMiddleware rejects requests that break the embedded
// contract before a handler runs. Multipart bodies are passed through:
// the upload handlers own their size and type checks, and buffering a
// file twice to validate a binary field buys nothing. Paths outside the
// contract (healthz, metrics, the document itself) skip validation.
func (c *apiContractData) requestValidationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, pathParams, err := c.router.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		if isMultipartRequest(r) {
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			var requestErr *openapi3filter.RequestError
			if errors.As(err, &requestErr) {
				writeError(w, http.StatusBadRequest, requestErr.Error())
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isMultipartRequest(r *http.Request) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "multipart/form-data"
}

func (rt *Router) openapiDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(apiContract.json)
}

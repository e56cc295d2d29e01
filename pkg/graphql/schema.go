// Package graphql serves a graphql-go schema over HTTP.
//
//	schema, err := graphql.NewSchema(rootQuery)
//	r.Handle("/graphql", "graphql", graphql.Handler(schema))
package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/shopease/pkg/bind"
)

// NewSchema builds a read-only schema around query.
func NewSchema(query *graphql.Object) (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{Query: query})
}

// Request is the standard GraphQL-over-HTTP body.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler executes GET (?query=&variables=) and POST (JSON body) requests.
// Execution errors are reported in the result with status 200, as GraphQL
// clients expect; only malformed requests get a 400.
func Handler(schema graphql.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		switch r.Method {
		case http.MethodGet:
			q := r.URL.Query()
			req.Query = q.Get("query")
			req.OperationName = q.Get("operationName")
			if v := q.Get("variables"); v != "" {
				if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
					writeError(w, http.StatusBadRequest, "variables must be a JSON object")
					return
				}
			}
		case http.MethodPost:
			r.Body = http.MaxBytesReader(w, r.Body, bind.MaxBodyBytes())
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "malformed JSON body")
				return
			}
		default:
			w.Header().Set("Allow", "GET, POST")
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		if req.Query == "" {
			writeError(w, http.StatusBadRequest, "query is required")
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			OperationName:  req.OperationName,
			VariableValues: req.Variables,
			Context:        r.Context(),
		})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"errors": []map[string]string{{"message": msg}},
	})
}

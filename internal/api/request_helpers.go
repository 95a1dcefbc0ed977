package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/scry-study/internal/api/shared"
	"github.com/phrazzld/scry-study/internal/domain"
)

// maxExcludedIDs bounds the exclude query parameter.
const maxExcludedIDs = 500

// learnerFromRequest returns the authenticated learner, writing a 401 when
// there is none.
func learnerFromRequest(w http.ResponseWriter, r *http.Request) (domain.LearnerID, bool) {
	id, ok := shared.LearnerIDFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, errUnauthenticated, "")
		return domain.NilLearnerID, false
	}
	return id, true
}

// pathCardID parses the {id} path parameter, writing a 400 when it is blank.
func pathCardID(w http.ResponseWriter, r *http.Request) (domain.CardID, bool) {
	id, err := domain.ParseCardID(chi.URLParam(r, "id"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return "", false
	}
	return id, true
}

// catalogFilterFromQuery reads ?category=&difficulty=.
func catalogFilterFromQuery(r *http.Request) domain.CatalogFilter {
	q := r.URL.Query()
	return domain.CatalogFilter{
		Category:   strings.TrimSpace(q.Get("category")),
		Difficulty: strings.TrimSpace(q.Get("difficulty")),
	}
}

// excludedFromQuery reads ?exclude=a,b and repeated ?exclude= values,
// dropping blanks and duplicates.
func excludedFromQuery(r *http.Request) ([]domain.CardID, error) {
	seen := make(map[domain.CardID]struct{})
	var ids []domain.CardID
	for _, raw := range r.URL.Query()["exclude"] {
		for _, part := range strings.Split(raw, ",") {
			id := domain.CardID(strings.TrimSpace(part))
			if id.IsZero() {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	if len(ids) > maxExcludedIDs {
		return nil, domain.ErrValidation
	}
	return ids, nil
}

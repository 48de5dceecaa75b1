package handlers

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/vuln-kanban-api/internal/constants"
	"github.com/yukikurage/vuln-kanban-api/internal/services"
)

// sessionCriteria returns the view criteria saved in the session, or the
// defaults when nothing was saved.
func sessionCriteria(session sessions.Session) services.ViewCriteria {
	criteria := services.DefaultViewCriteria()
	if v, ok := session.Get(constants.SessionKeySearchTerm).(string); ok {
		criteria.SearchTerm = v
	}
	if v, ok := session.Get(constants.SessionKeyLabels).(string); ok {
		criteria.SelectedLabels = splitList(v)
	}
	if v, ok := session.Get(constants.SessionKeySortBy).(string); ok && v != "" {
		criteria.SortBy = services.SortField(v)
	}
	if v, ok := session.Get(constants.SessionKeySortOrder).(string); ok && v != "" {
		criteria.SortOrder = services.SortOrder(v)
	}
	return criteria
}

func saveSessionCriteria(session sessions.Session, criteria services.ViewCriteria) error {
	session.Set(constants.SessionKeySearchTerm, criteria.SearchTerm)
	session.Set(constants.SessionKeyLabels, strings.Join(criteria.SelectedLabels, ","))
	session.Set(constants.SessionKeySortBy, string(criteria.SortBy))
	session.Set(constants.SessionKeySortOrder, string(criteria.SortOrder))
	return session.Save()
}

func clearSessionCriteria(session sessions.Session) error {
	session.Delete(constants.SessionKeySearchTerm)
	session.Delete(constants.SessionKeyLabels)
	session.Delete(constants.SessionKeySortBy)
	session.Delete(constants.SessionKeySortOrder)
	return session.Save()
}

// queryCriteria overrides base with any search, labels, sort, sortBy and
// sortOrder query parameters.
func queryCriteria(c *gin.Context, base services.ViewCriteria) (services.ViewCriteria, error) {
	criteria := base
	if v, ok := c.GetQuery("search"); ok {
		criteria.SearchTerm = v
	}
	if v, ok := c.GetQuery("labels"); ok {
		criteria.SelectedLabels = splitList(v)
	}
	if v := c.Query("sort"); v != "" {
		by, order, err := services.ParseSortOption(v)
		if err != nil {
			return criteria, err
		}
		criteria.SortBy, criteria.SortOrder = by, order
	}
	if v := c.Query("sortBy"); v != "" {
		criteria.SortBy = services.SortField(v)
	}
	if v := c.Query("sortOrder"); v != "" {
		criteria.SortOrder = services.SortOrder(v)
	}
	return criteria, criteria.Validate()
}

func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package store

import (
	"database/sql"

	"chershare/internal/models"
)

// MaxListRows caps resource listings to prevent unbounded scans.
const MaxListRows = 100

// ResourceFilter holds the optional equality predicates for ListResources.
// Zero values mean "not filtered".
type ResourceFilter struct {
	Name           string
	OwnerAccountID string
	Limit          int
}

type filterMask uint8

const (
	filterByName filterMask = 1 << iota
	filterByOwner

	filterMaskAll = filterByName | filterByOwner
)

func (f ResourceFilter) mask() filterMask {
	var mask filterMask
	if f.Name != "" {
		mask |= filterByName
	}
	if f.OwnerAccountID != "" {
		mask |= filterByOwner
	}
	return mask
}

// Base resource view query. Both joins are LEFT JOINs on purpose: a resource
// with no title image or no tags must still appear in the result set.
const resourceViewBase = `
SELECT
	r.name, r.title, r.description,
	r.contact_info,
	i.image_url,
	t.tag_list
FROM resources AS r
LEFT JOIN resource_images AS i
	ON i.resource_name = r.name AND i.position = 0
LEFT JOIN (
	SELECT resource_name, GROUP_CONCAT(tag, ',') AS tag_list
	FROM resource_tags
	GROUP BY resource_name
) AS t ON t.resource_name = r.name`

// The full set of optional predicates. Clauses are combined with AND and
// values are always bound as parameters, never interpolated.
var resourcePredicates = []struct {
	bit    filterMask
	clause string
}{
	{filterByName, "r.name = ?"},
	{filterByOwner, "r.owner_account_id = ?"},
}

// buildResourceQuery assembles the view query for one filter combination.
// Every combination is prepared once at startup, so no SQL is parsed per call.
func buildResourceQuery(mask filterMask) string {
	query := resourceViewBase
	sep := "\nWHERE "
	for _, p := range resourcePredicates {
		if mask&p.bit != 0 {
			query += sep + p.clause
			sep = " AND "
		}
	}
	return query + "\nLIMIT ?"
}

// ListResources returns resource view rows matching the filter, capped at
// MaxListRows. Iteration order is whatever sqlite yields; callers must not
// depend on it beyond stability for a given data snapshot.
func (s *Store) ListResources(filter ResourceFilter) ([]models.ResourceView, error) {
	args := make([]interface{}, 0, 3)
	if filter.Name != "" {
		args = append(args, filter.Name)
	}
	if filter.OwnerAccountID != "" {
		args = append(args, filter.OwnerAccountID)
	}
	limit := filter.Limit
	if limit <= 0 || limit > MaxListRows {
		limit = MaxListRows
	}
	args = append(args, limit)

	rows, err := s.resourceList[filter.mask()].Query(args...)
	if err != nil {
		return nil, queryError("resource query failed", err)
	}
	defer rows.Close()

	views := []models.ResourceView{}
	for rows.Next() {
		var view models.ResourceView
		var titleImage, tagList sql.NullString
		if err := rows.Scan(
			&view.Name, &view.Title, &view.Description,
			&view.ContactInfo, &titleImage, &tagList,
		); err != nil {
			return nil, scanError("failed to scan resource row", err)
		}
		if titleImage.Valid {
			view.TitleImage = &titleImage.String
		}
		view.TagList = tagList.String
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("resource row iteration failed", err)
	}
	return views, nil
}

// GetResource returns the view row for one resource, or nil when it doesn't
// exist.
func (s *Store) GetResource(name string) (*models.ResourceView, error) {
	views, err := s.ListResources(ResourceFilter{Name: name, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, nil
	}
	return &views[0], nil
}

// ResourceImages returns all image URLs of a resource ordered by position.
func (s *Store) ResourceImages(name string) ([]models.ResourceImage, error) {
	rows, err := s.resourceImages.Query(name)
	if err != nil {
		return nil, queryError("resource images query failed", err)
	}
	defer rows.Close()

	images := []models.ResourceImage{}
	for rows.Next() {
		var image models.ResourceImage
		if err := rows.Scan(&image.ImageURL); err != nil {
			return nil, scanError("failed to scan resource image row", err)
		}
		images = append(images, image)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("resource image row iteration failed", err)
	}
	return images, nil
}

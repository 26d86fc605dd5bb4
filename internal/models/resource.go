package models

// ResourceView is the denormalized public representation of a resource,
// shaped from the resources/resource_images/resource_tags join.
type ResourceView struct {
	Name        string  `json:"name"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ContactInfo string  `json:"contactInfo"`
	TitleImage  *string `json:"titleImage"`
	TagList     string  `json:"tagList"`
}

// ResourceImage is one image URL row for a resource, ordered by position.
// Position 0 is the title image.
type ResourceImage struct {
	ImageURL string `json:"image_url"`
}

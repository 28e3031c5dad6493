package domain

type (
	UserId   = string
	ThreadId = int64
	ReplyId  = int64

	ThreadTitle = string
	Body        = string
)

type Category string

const (
	CategoryFeatures Category = "FEATURES"
	CategoryBugs     Category = "BUGS"
	CategoryGeneral  Category = "GENERAL"
	CategoryFeedback Category = "FEEDBACK"
)

// DefaultCategory is used when a thread is created without one.
const DefaultCategory = CategoryGeneral

var Categories = []Category{CategoryFeatures, CategoryBugs, CategoryGeneral, CategoryFeedback}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

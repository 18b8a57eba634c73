package models

// Article is the stored metadata of one archive entry. Number is 1-based and
// follows archive publish order.
type Article struct {
	Number    int    `json:"number" yaml:"number"`
	Title     string `json:"title" yaml:"title"`
	Thumbnail string `json:"thumbnail" yaml:"thumbnail"`
	Favorite  bool   `json:"favorite" yaml:"favorite"`
	Read      bool   `json:"read" yaml:"read"`
}

// LoadedArticle is an article ready for rendering: transformed HTML plus the
// footnote bodies pulled out of it. It is rebuilt on every read.
type LoadedArticle struct {
	Article Article
	HTML    string
	Refs    []string
}

func (l *LoadedArticle) Number() int    { return l.Article.Number }
func (l *LoadedArticle) Title() string  { return l.Article.Title }
func (l *LoadedArticle) Favorite() bool { return l.Article.Favorite }

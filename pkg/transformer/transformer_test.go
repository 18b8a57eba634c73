package transformer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/whatif/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html>
<html>
<head>
<title>Glass Half Empty</title>
<link rel="stylesheet" type="text/css" href="/css/style.css">
<link rel="alternate" type="application/rss+xml" href="/feed.atom">
<script type="text/javascript" src="//cdn.mathjax.org/mathjax/2.7/MathJax.js?config=TeX"></script>
<script src="/js/other.js"></script>
</head>
<body>
<div id="header-wrapper"><div id="header">what if?</div></div>
<nav class="main-nav"><a href="/6/">prev</a><a href="/8/">next</a></nav>
<article class="entry">
<h1>Glass Half Empty</h1>
<p>A glass<span class="ref"><span class="refnum">[1]</span><span class="refbody">It is <i>half</i> full.</span></span> of water.</p>
<img class="illustration" src="/imgs/a/7/glass.png" title="glass">
<p>Then<span class="ref"><span class="refnum">[2]</span><span class="refbody">Or is it?</span></span> it empties.</p>
<img class="illustration" src="http://what-if.xkcd.com/imgs/a/7/empty.png" title="empty">
<img class="illustration" src="imgs/a/7/vacuum.png" title="vacuum">
</article>
<div id="footer-wrapper"><div id="footer">footer</div></div>
</body>
</html>`

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestTransformOnline(t *testing.T) {
	article := models.Article{Number: 7, Title: "Glass Half Empty"}
	loaded, err := Transform(7, article, []byte(page), Options{BaseURL: "https://what-if.xkcd.com"})
	require.NoError(t, err)
	assert.Equal(t, article, loaded.Article)

	doc := parse(t, loaded.HTML)

	var srcs []string
	doc.Find(".illustration").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		srcs = append(srcs, src)
		onclick, _ := s.Attr("onclick")
		assert.Equal(t, ImageClickHandler, onclick)
	})
	assert.Equal(t, []string{
		"https://what-if.xkcd.com/imgs/a/7/glass.png",
		"https://what-if.xkcd.com/imgs/a/7/empty.png",
		"https://what-if.xkcd.com/imgs/a/7/vacuum.png",
	}, srcs)

	scripts := doc.Find("script[src]")
	first, _ := scripts.First().Attr("src")
	second, _ := scripts.Eq(1).Attr("src")
	assert.Equal(t, MathJaxOnline, first)
	assert.Equal(t, "/js/other.js", second)
}

func TestTransformOnlineRewritesUnresolvableSources(t *testing.T) {
	raw := `<html><head></head><body>
<img class="illustration" title="none">
<img class="illustration" src="  " title="blank">
<img class="illustration" src="/imgs/a/3/ok.png" title="ok">
</body></html>`

	loaded, err := Transform(3, models.Article{Number: 3}, []byte(raw), Options{BaseURL: "https://what-if.xkcd.com/"})
	require.NoError(t, err)

	var srcs []string
	parse(t, loaded.HTML).Find(".illustration").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		assert.True(t, ok, "every illustration gets a src")
		srcs = append(srcs, src)
	})
	assert.Equal(t, []string{
		"https://what-if.xkcd.com/",
		"https://what-if.xkcd.com/",
		"https://what-if.xkcd.com/imgs/a/3/ok.png",
	}, srcs)
}

func TestTransformOffline(t *testing.T) {
	loaded, err := Transform(7, models.Article{Number: 7}, []byte(page), Options{
		Offline:     true,
		OfflineBase: "/data/what if",
	})
	require.NoError(t, err)

	doc := parse(t, loaded.HTML)
	doc.Find(".illustration").Each(func(i int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		assert.Equal(t, fmt.Sprintf("file:///data/what if/7/%d.png", i+1), src)
		_, ok := s.Attr("onclick")
		assert.True(t, ok)
	})
	assert.Equal(t, 3, doc.Find(".illustration").Length())

	src, _ := doc.Find("script[src]").First().Attr("src")
	assert.Equal(t, MathJaxOffline, src)
}

func TestTransformExtractsRefs(t *testing.T) {
	loaded, err := Transform(7, models.Article{Number: 7}, []byte(page), Options{})
	require.NoError(t, err)

	require.Len(t, loaded.Refs, 2)
	assert.Equal(t, "It is <i>half</i> full.", loaded.Refs[0])
	assert.Equal(t, "Or is it?", loaded.Refs[1])

	assert.NotContains(t, loaded.HTML, "refbody")
	assert.NotContains(t, loaded.HTML, "Or is it?")

	doc := parse(t, loaded.HTML)
	doc.Find(".refnum").Each(func(i int, s *goquery.Selection) {
		onclick, _ := s.Attr("onclick")
		assert.Equal(t, fmt.Sprintf(`ref.performClick("%d")`, i), onclick)
	})
	assert.Equal(t, 2, doc.Find(".refnum").Length())
}

func TestTransformRemovesChrome(t *testing.T) {
	loaded, err := Transform(7, models.Article{Number: 7}, []byte(page), Options{})
	require.NoError(t, err)

	doc := parse(t, loaded.HTML)
	for _, sel := range []string{"#header-wrapper", "#footer-wrapper", "nav", "h1"} {
		assert.Zero(t, doc.Find(sel).Length(), sel)
	}
	assert.Contains(t, loaded.HTML, "A glass")
	assert.Contains(t, doc.Find("title").Text(), "Glass Half Empty")
}

func TestTransformThemeMatrix(t *testing.T) {
	tests := []struct {
		theme models.Theme
		want  string
	}{
		{theme: models.Theme{Amoled: true, Invert: true}, want: "amoled_invert.css"},
		{theme: models.Theme{Amoled: true, Night: true, Invert: true}, want: "amoled_invert.css"},
		{theme: models.Theme{Amoled: true}, want: "amoled.css"},
		{theme: models.Theme{Amoled: true, Night: true}, want: "amoled.css"},
		{theme: models.Theme{Night: true, Invert: true}, want: "night_invert.css"},
		{theme: models.Theme{Night: true}, want: "night.css"},
		{theme: models.Theme{}, want: "style.css"},
		{theme: models.Theme{Invert: true}, want: "style.css"},
	}

	for _, tt := range tests {
		t.Run(tt.want+fmt.Sprintf("%+v", tt.theme), func(t *testing.T) {
			loaded, err := Transform(7, models.Article{Number: 7}, []byte(page), Options{Theme: tt.theme})
			require.NoError(t, err)

			links := parse(t, loaded.HTML).Find("link")
			require.Equal(t, 1, links.Length())
			href, _ := links.Attr("href")
			rel, _ := links.Attr("rel")
			assert.Equal(t, tt.want, href)
			assert.Equal(t, "stylesheet", rel)
		})
	}
}

func TestTransformWithoutScriptOrRefs(t *testing.T) {
	raw := `<html><head></head><body><p>bare <img class="illustration" src="/a.png"></p></body></html>`

	loaded, err := Transform(1, models.Article{Number: 1}, []byte(raw), Options{})
	require.NoError(t, err)
	assert.Empty(t, loaded.Refs)
	assert.NotNil(t, loaded.Refs)
	assert.Zero(t, parse(t, loaded.HTML).Find("script").Length())
	assert.Contains(t, loaded.HTML, "https://what-if.xkcd.com/a.png")
}

func TestTransformIsRepeatable(t *testing.T) {
	opts := Options{Offline: true, OfflineBase: "/x", Theme: models.Theme{Night: true}}
	first, err := Transform(7, models.Article{Number: 7}, []byte(page), opts)
	require.NoError(t, err)

	second, err := Transform(7, models.Article{Number: 7}, []byte(first.HTML), opts)
	require.NoError(t, err)

	assert.Equal(t, 1, parse(t, second.HTML).Find("link").Length())
	assert.Equal(t, 3, strings.Count(second.HTML, "file:///x/7/"))
}

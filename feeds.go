package vellum

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/vellum-ws/vellum/domain"
)

// baseURL returns the canonical site URL, preferring the persisted site
// setting over the server configuration.
func (app *App) baseURL() string {
	if value, err := app.Repo.GetSetting(domain.SettingSiteURL); err == nil && value != "" {
		return strings.TrimSuffix(value, "/")
	}
	if app.Config != nil && app.Config.BaseURL != "" {
		return strings.TrimSuffix(app.Config.BaseURL, "/")
	}
	return "http://localhost:8080"
}

// BuildFeed builds the RSS 2.0 document for the given pages.
func BuildFeed(base, title, tagline string, pages []*domain.Page) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	rss := doc.CreateElement("rss")
	rss.CreateAttr("version", "2.0")
	channel := rss.CreateElement("channel")
	channel.CreateElement("title").SetText(title)
	channel.CreateElement("link").SetText(base)
	channel.CreateElement("description").SetText(tagline)
	channel.CreateElement("lastBuildDate").SetText(time.Now().Format(time.RFC1123Z))

	for _, page := range pages {
		item := channel.CreateElement("item")
		item.CreateElement("title").SetText(page.Title)
		link := fmt.Sprintf("%s/pages/%s", base, page.Slug)
		item.CreateElement("link").SetText(link)
		item.CreateElement("guid").SetText(link)
		item.CreateElement("description").SetText(page.Summary)
		item.CreateElement("pubDate").SetText(page.UpdatedAt.Format(time.RFC1123Z))
		for _, tag := range page.Tags {
			item.CreateElement("category").SetText(tag)
		}
	}
	doc.Indent(2)
	return doc
}

// BuildSitemap builds the sitemap.xml document for the given pages.
func BuildSitemap(base string, pages []*domain.Page) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	urlset := doc.CreateElement("urlset")
	urlset.CreateAttr("xmlns", "http://www.sitemaps.org/schemas/sitemap/0.9")

	root := urlset.CreateElement("url")
	root.CreateElement("loc").SetText(base + "/")

	for _, page := range pages {
		url := urlset.CreateElement("url")
		url.CreateElement("loc").SetText(fmt.Sprintf("%s/pages/%s", base, page.Slug))
		url.CreateElement("lastmod").SetText(page.UpdatedAt.Format("2006-01-02"))
	}
	doc.Indent(2)
	return doc
}

func (app *App) handleFeed(w http.ResponseWriter, req *http.Request) {
	pages, err := app.Repo.GetPages(true)
	if err != nil {
		app.WriteLog("ERROR", fmt.Sprintf("listing pages for feed : %s", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	size := app.pageSize(domain.SettingFeedPageSize, 20)
	if len(pages) > size {
		pages = pages[:size]
	}

	title, _ := app.Repo.GetSetting(domain.SettingSiteTitle)
	tagline, _ := app.Repo.GetSetting(domain.SettingSiteTagline)
	doc := BuildFeed(app.baseURL(), title, tagline, pages)

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := doc.WriteTo(w); err != nil {
		app.WriteLog("WARN", fmt.Sprintf("writing feed : %s", err))
	}
}

func (app *App) handleSitemap(w http.ResponseWriter, req *http.Request) {
	pages, err := app.Repo.GetPages(true)
	if err != nil {
		app.WriteLog("ERROR", fmt.Sprintf("listing pages for sitemap : %s", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	doc := BuildSitemap(app.baseURL(), pages)

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if _, err := doc.WriteTo(w); err != nil {
		app.WriteLog("WARN", fmt.Sprintf("writing sitemap : %s", err))
	}
}

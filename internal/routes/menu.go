package routes

import (
	"net/url"
	"strings"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
)

// AllGroup is the bucket holding every operation of the primary document.
const AllGroup = "all"

// EmptyRedirect is the redirect target of a menu node without leaves.
const EmptyRedirect = "/empty"

const (
	titleDocuments    = "API Documents"
	titleAll          = "All APIs"
	titleEntities     = "Entities"
	titleAllEntities  = "All Entities"
	titleMarkdown     = "Other Docs"
	titleAuthorize    = "Authorize"
	titleDefaultGroup = "Default Group"
)

// bucket is one document group ready to be turned into routes.
type bucket struct {
	group   string
	title   string
	tags    domain.TagGroups
	schemas []string
}

func toAPIData(buckets []bucket) domain.APIData {
	data := make(domain.APIData, 0, len(buckets))
	for _, b := range buckets {
		data = append(data, domain.GroupData{Group: b.group, Title: b.title, Tags: b.tags})
	}
	return data
}

// buildMenu assembles the navigation forest: an optional Authorize node, document
// routes, entity routes and optional markdown routes.
func buildMenu(buckets []bucket, doc *domain.Document) []*domain.MenuNode {
	var menu []*domain.MenuNode
	if doc.HasSecurity() {
		menu = append(menu, &domain.MenuNode{Name: "authorize", Path: "/authorize", Title: titleAuthorize})
	}
	menu = append(menu, documentRoutes(buckets), entityRoutes(buckets))
	if md := markdownRoutes(doc.MarkdownDocs()); md != nil {
		menu = append(menu, md)
	}
	return menu
}

func documentRoutes(buckets []bucket) *domain.MenuNode {
	root := &domain.MenuNode{Name: "document", Path: "/document", Title: titleDocuments}
	for _, b := range buckets {
		groupPath := "/document/" + segment(b.group)
		node := &domain.MenuNode{Name: routeName(b.group), Path: groupPath, Title: b.title}
		for _, tg := range b.tags {
			tagPath := groupPath + "/" + segment(tg.Tag)
			tagNode := &domain.MenuNode{Name: routeName(b.group, tg.Tag), Path: tagPath, Title: tg.Tag}
			for _, op := range tg.Operations {
				tagNode.Children = append(tagNode.Children, &domain.MenuNode{
					Name:   routeName(b.group, tg.Tag, op.OperationID),
					Path:   tagPath + "/" + segment(op.OperationID),
					Title:  operationTitle(op),
					Method: strings.ToUpper(op.Method),
				})
			}
			tagNode.Redirect = firstLeaf(tagNode)
			node.Children = append(node.Children, tagNode)
		}
		node.Redirect = firstLeaf(node)
		root.Children = append(root.Children, node)
	}
	root.Redirect = firstChild(root)
	return root
}

func entityRoutes(buckets []bucket) *domain.MenuNode {
	root := &domain.MenuNode{Name: "entity", Path: "/entity", Title: titleEntities}
	for _, b := range buckets {
		node := &domain.MenuNode{
			Name:  routeName("entity", b.group),
			Path:  "/entity/" + segment(b.group),
			Title: b.title,
		}
		if b.group == AllGroup {
			node.Name = "entries"
			node.Title = titleAllEntities
		}
		for _, s := range b.schemas {
			node.Children = append(node.Children, &domain.MenuNode{
				Name:  routeName("entity", b.group, s),
				Path:  node.Path + "/" + segment(s),
				Title: s,
			})
		}
		node.Redirect = firstLeaf(node)
		root.Children = append(root.Children, node)
	}
	root.Redirect = firstChild(root)
	return root
}

func markdownRoutes(docs []domain.MarkdownDoc) *domain.MenuNode {
	if len(docs) == 0 {
		return nil
	}
	root := &domain.MenuNode{Name: "markdown", Path: "/markdown", Title: titleMarkdown}
	groups := map[string]*domain.MenuNode{}
	for _, doc := range docs {
		node, ok := groups[doc.Group]
		if !ok {
			node = &domain.MenuNode{
				Name:  routeName("markdown", doc.Group),
				Path:  "/markdown/" + segment(doc.Group),
				Title: doc.Group,
			}
			groups[doc.Group] = node
			root.Children = append(root.Children, node)
		}
		node.Children = append(node.Children, &domain.MenuNode{
			Name:  routeName("markdown", doc.Group, doc.DisplayName),
			Path:  node.Path + "/" + segment(doc.DisplayName),
			Title: doc.DisplayName,
		})
	}
	for _, node := range root.Children {
		node.Redirect = firstLeaf(node)
	}
	root.Redirect = firstChild(root)
	return root
}

// routeName joins hierarchy parts with "*". A "*" inside a part is replaced so
// that the separator stays unambiguous.
func routeName(parts ...string) string {
	clean := make([]string, len(parts))
	for i, p := range parts {
		clean[i] = strings.ReplaceAll(p, "*", "_")
	}
	return strings.Join(clean, "*")
}

func segment(s string) string {
	return url.PathEscape(s)
}

func operationTitle(op domain.OperationRecord) string {
	if op.Summary != "" {
		return op.Summary
	}
	return op.OperationID
}

// firstLeaf returns the path of the deepest first descendant of node.
func firstLeaf(node *domain.MenuNode) string {
	if len(node.Children) == 0 {
		return EmptyRedirect
	}
	for len(node.Children) > 0 {
		node = node.Children[0]
	}
	return node.Path
}

func firstChild(node *domain.MenuNode) string {
	if len(node.Children) == 0 {
		return EmptyRedirect
	}
	return node.Children[0].Path
}

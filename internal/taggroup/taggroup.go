// Package taggroup buckets path operations by tag.
package taggroup

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
)

// DefaultTag collects operations that declare no tags.
const DefaultTag = "default"

// GroupByTag buckets every operation of paths under each tag it declares.
// Tags appear in order of first occurrence and operations in path, then method, order.
// An operation with several tags is repeated in every bucket.
func GroupByTag(paths *orderedmap.OrderedMap[string, *domain.PathItem]) domain.TagGroups {
	groups := domain.TagGroups{}
	if paths == nil {
		return groups
	}

	index := make(map[string]int)
	for path := paths.Oldest(); path != nil; path = path.Next() {
		if path.Value == nil || path.Value.Operations == nil {
			continue
		}
		for op := path.Value.Operations.Oldest(); op != nil; op = op.Next() {
			if op.Value == nil {
				continue
			}
			record := domain.OperationRecord{
				Operation: *op.Value,
				Method:    op.Key,
				Path:      path.Key,
			}
			tags := op.Value.Tags
			if len(tags) == 0 {
				tags = []string{DefaultTag}
			}
			for _, tag := range tags {
				i, ok := index[tag]
				if !ok {
					i = len(groups)
					index[tag] = i
					groups = append(groups, domain.TagGroup{Tag: tag})
				}
				groups[i].Operations = append(groups[i].Operations, record)
			}
		}
	}
	return groups
}

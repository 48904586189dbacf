// Package binding resolves section view bindings: it maps a section's
// mapping field through the render context, executes the named external view,
// and merges the returned row into the ext namespace of the context.
package binding

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/posprint/receipt-templates/internal/resolve"
	"github.com/posprint/receipt-templates/pkg/templateformat"
)

// DefaultFilterField is the convention key sent to view executions when the
// caller does not override it.
const DefaultFilterField = "id"

// DefaultTimeout bounds each view execution call.
const DefaultTimeout = 5 * time.Second

// ViewRequest identifies one external view execution.
type ViewRequest struct {
	ViewName    string
	FilterField string
	FilterValue string
}

// ViewExecutor runs a view against an external data source and returns the
// matching row. An absent row is a valid response: (nil, nil).
type ViewExecutor interface {
	ExecuteView(ctx context.Context, req ViewRequest) (map[string]interface{}, error)
}

// Resolver resolves view bindings for sections of a template document.
type Resolver struct {
	executor    ViewExecutor
	FilterField string
	Timeout     time.Duration
}

// NewResolver creates a resolver around a view executor. A nil executor is
// valid and makes every binding resolve empty, which keeps offline rendering
// working on documents that carry bindings.
func NewResolver(executor ViewExecutor) *Resolver {
	return &Resolver{
		executor:    executor,
		FilterField: DefaultFilterField,
		Timeout:     DefaultTimeout,
	}
}

// ResolveSection resolves one section's view binding against the context and
// returns the normalized external row. Every failure mode degrades to an
// empty contribution; rendering is never aborted by a binding.
func (r *Resolver) ResolveSection(ctx context.Context, section templateformat.Section, data map[string]interface{}) map[string]interface{} {
	b := section.ViewBinding
	if b == nil || b.ViewName == "" {
		return map[string]interface{}{}
	}

	value := resolve.Path(data, b.MappingField)
	filterValue := resolve.Stringify(value)
	if isFalsy(value) || filterValue == "" {
		// A binding with no resolvable filter value performs no call.
		return map[string]interface{}{}
	}

	if r.executor == nil {
		return map[string]interface{}{}
	}

	callCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	row, err := r.executor.ExecuteView(callCtx, ViewRequest{
		ViewName:    b.ViewName,
		FilterField: r.FilterField,
		FilterValue: filterValue,
	})
	if err != nil {
		log.Printf("Warning: view %q for section %q failed: %v", b.ViewName, section.ID, err)
		return map[string]interface{}{}
	}

	return Normalize(row)
}

// ResolveAll resolves every bound section concurrently, waits for all calls
// to settle, and merges the contributions into a single ext record in section
// declaration order. On a key collision the later-declared section wins; the
// order is deterministic regardless of how the calls interleave.
func (r *Resolver) ResolveAll(ctx context.Context, sections []templateformat.Section, data map[string]interface{}) map[string]interface{} {
	var bound []templateformat.Section
	for _, s := range sections {
		if s.ViewBinding != nil && s.ViewBinding.ViewName != "" {
			bound = append(bound, s)
		}
	}

	ext := map[string]interface{}{}
	if len(bound) == 0 {
		return ext
	}

	results := make([]map[string]interface{}, len(bound))

	var wg sync.WaitGroup
	for i, section := range bound {
		wg.Add(1)
		go func(i int, section templateformat.Section) {
			defer wg.Done()
			results[i] = r.ResolveSection(ctx, section, data)
		}(i, section)
	}
	wg.Wait()

	for _, row := range results {
		for k, v := range row {
			ext[k] = v
		}
	}

	return ext
}

// Normalize inserts every value of an external row under both its original
// key and its fully-lowercased key, so templates authored with either casing
// resolve the same value.
func Normalize(row map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(row)*2)
	for k, v := range row {
		out[k] = v
		out[strings.ToLower(k)] = v
	}
	return out
}

// isFalsy mirrors the filter-value check: missing, empty, zero, and false
// values all suppress the view call.
func isFalsy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case float64:
		return v == 0
	case bool:
		return !v
	default:
		return false
	}
}

package planviz

import "fmt"

// ModelDescriptor identifies a queryable backend model.
type ModelDescriptor struct {
	// Name is the identifier passed to Generate (e.g., "gemini-2.5-flash-image")
	Name string

	// DisplayName is the human readable name, when the backend provides one
	DisplayName string

	// SupportsGeneration reports whether the model advertises content generation
	SupportsGeneration bool
}

// ListingKind discriminates the outcome of a model listing.
type ListingKind int

const (
	// ListingOK means at least one generation-capable model was listed.
	ListingOK ListingKind = iota

	// ListingEmpty means the backend answered but no model supports generation.
	ListingEmpty

	// ListingFailed means the listing call itself failed.
	ListingFailed
)

func (k ListingKind) String() string {
	switch k {
	case ListingOK:
		return "ok"
	case ListingEmpty:
		return "empty"
	case ListingFailed:
		return "failed"
	default:
		return fmt.Sprintf("ListingKind(%d)", int(k))
	}
}

// ModelListing is the result of Prober.ListModels. Callers switch on Kind
// rather than inspecting display text.
type ModelListing struct {
	Kind ListingKind

	// Models holds the generation-capable models in backend order. Set only for ListingOK.
	Models []ModelDescriptor

	// Err is the listing failure. Set only for ListingFailed.
	Err error
}

// OK reports whether the listing produced models to probe.
func (l ModelListing) OK() bool {
	return l.Kind == ListingOK && len(l.Models) > 0
}

// Identifiers returns the model names in listing order.
func (l ModelListing) Identifiers() []string {
	ids := make([]string, 0, len(l.Models))
	for _, m := range l.Models {
		ids = append(ids, m.Name)
	}
	return ids
}

// Diagnostics returns a human readable line for non-OK listings, or nil.
func (l ModelListing) Diagnostics() []string {
	switch l.Kind {
	case ListingEmpty:
		return []string{"No models supporting content generation were found"}
	case ListingFailed:
		msg := "unknown error"
		if l.Err != nil {
			msg = l.Err.Error()
		}
		return []string{"Error listing models: " + msg}
	default:
		return nil
	}
}

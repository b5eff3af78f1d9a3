package domain

// SwaggerConfig lists grouped documents or federated services.
type SwaggerConfig struct {
	ConfigURL string      `json:"configUrl,omitempty"`
	URLs      []ConfigURL `json:"urls"`
}

// ConfigURL is one entry of the swagger-config urls list.
type ConfigURL struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	ContextPath string `json:"contextPath,omitempty"`
	ServiceID   string `json:"serviceId,omitempty"`
}

// ServiceStatus is the last known availability of a service.
type ServiceStatus string

// Service statuses.
const (
	StatusUp      ServiceStatus = "UP"
	StatusDown    ServiceStatus = "DOWN"
	StatusUnknown ServiceStatus = "UNKNOWN"
)

// ServiceItem is a service of an aggregated deployment. URL is its identity.
type ServiceItem struct {
	Name        string        `json:"name"`
	URL         string        `json:"url"`
	ContextPath string        `json:"contextPath,omitempty"`
	ServiceID   string        `json:"serviceId,omitempty"`
	Disabled    bool          `json:"disabled"`
	Reason      string        `json:"reason,omitempty"`
	Status      ServiceStatus `json:"status"`
}

// NewServiceItem builds a service from a config entry with default status fields.
func NewServiceItem(u ConfigURL) ServiceItem {
	return ServiceItem{
		Name:        u.Name,
		URL:         u.URL,
		ContextPath: u.ContextPath,
		ServiceID:   u.ServiceID,
		Status:      StatusUnknown,
	}
}

// OperationRecord is an operation together with its location.
type OperationRecord struct {
	Operation
	Method string `json:"method"`
	Path   string `json:"path"`
}

// TagGroup is the operations of one tag.
type TagGroup struct {
	Tag        string            `json:"tag"`
	Operations []OperationRecord `json:"operations"`
}

// TagGroups is an insertion-ordered tag mapping.
type TagGroups []TagGroup

// Lookup returns the operations of a tag.
func (g TagGroups) Lookup(tag string) ([]OperationRecord, bool) {
	for _, group := range g {
		if group.Tag == tag {
			return group.Operations, true
		}
	}
	return nil, false
}

// GroupData is the tag mapping of one document group.
type GroupData struct {
	Group string    `json:"group"`
	Title string    `json:"title"`
	Tags  TagGroups `json:"tags"`
}

// APIData holds the tag mappings of every group of the active document, "all" first.
type APIData []GroupData

// Group returns the tag mapping of a group.
func (d APIData) Group(name string) (TagGroups, bool) {
	for _, g := range d {
		if g.Group == name {
			return g.Tags, true
		}
	}
	return nil, false
}

// MenuNode is one entry of the generated navigation tree.
type MenuNode struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	Title    string      `json:"title"`
	Method   string      `json:"method,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
	Children []*MenuNode `json:"children,omitempty"`
}

// Tab is one open documentation tab.
type Tab struct {
	Path  string `json:"path"`
	Title string `json:"title,omitempty"`
}

// TabsState is the tab strip of one service.
type TabsState struct {
	Tabs       []Tab  `json:"tabs"`
	CurrentTab string `json:"currentTab,omitempty"`
}

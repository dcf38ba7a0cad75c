package reference

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gravitrone/cloudconsole/cli/internal/api"
)

// ErrUnknownKind is returned for a reference string with no matching kind.
var ErrUnknownKind = errors.New("unknown reference kind")

// Kind names one reference collection.
type Kind string

const (
	KindProject          Kind = "project"
	KindProjectGroup     Kind = "project_group"
	KindServiceAccount   Kind = "service_account"
	KindCloudServiceType Kind = "cloud_service_type"
	KindSecret           Kind = "secret"
	KindCollector        Kind = "collector"
	KindProvider         Kind = "provider"
	KindRegion           Kind = "region"
	KindPlugin           Kind = "plugin"
	KindUser             Kind = "user"
	KindSpotGroup        Kind = "spot_group"
	KindProtocol         Kind = "protocol"
	KindWebhook          Kind = "webhook"
)

// Descriptor says where a kind lives and how a record projects to an Item.
type Descriptor struct {
	Kind Kind
	// Reference is the dotted name used by search schemas, e.g. "inventory.Region".
	Reference string
	Service   string
	Resource  string
	IDField   string
	Only      []string
	label     func(api.Record) string
}

// Project turns one record into an Item. Records without an id yield an
// Item with an empty Key.
func (d Descriptor) Project(rec api.Record) Item {
	name := rec.String("name")
	label := name
	if d.label != nil {
		label = d.label(rec)
	}
	key := rec.String(d.IDField)
	if label == "" {
		label = key
	}
	return Item{Key: key, Label: label, Name: name}
}

func nameOr(field string) func(api.Record) string {
	return func(rec api.Record) string {
		if name := rec.String("name"); name != "" {
			return name
		}
		return rec.String(field)
	}
}

var descriptors = []Descriptor{
	{Kind: KindProject, Reference: "identity.Project", Service: "identity", Resource: "project",
		IDField: "project_id", Only: []string{"project_id", "name", "project_group_info"},
		label: func(rec api.Record) string {
			name := rec.String("name")
			if group := rec.Nested("project_group_info").String("name"); group != "" && name != "" {
				return group + " > " + name
			}
			return name
		}},
	{Kind: KindProjectGroup, Reference: "identity.ProjectGroup", Service: "identity", Resource: "project-group",
		IDField: "project_group_id", Only: []string{"project_group_id", "name"}},
	{Kind: KindServiceAccount, Reference: "identity.ServiceAccount", Service: "identity", Resource: "service-account",
		IDField: "service_account_id", Only: []string{"service_account_id", "name"}},
	{Kind: KindCloudServiceType, Reference: "inventory.CloudServiceType", Service: "inventory", Resource: "cloud-service-type",
		IDField: "cloud_service_type_id", Only: []string{"cloud_service_type_id", "name", "group", "provider"},
		label: func(rec api.Record) string {
			if group := rec.String("group"); group != "" {
				return group + " / " + rec.String("name")
			}
			return rec.String("name")
		}},
	{Kind: KindSecret, Reference: "secret.Secret", Service: "secret", Resource: "secret",
		IDField: "secret_id", Only: []string{"secret_id", "name"}},
	{Kind: KindCollector, Reference: "inventory.Collector", Service: "inventory", Resource: "collector",
		IDField: "collector_id", Only: []string{"collector_id", "name"}},
	{Kind: KindProvider, Reference: "identity.Provider", Service: "identity", Resource: "provider",
		IDField: "provider", Only: []string{"provider", "name"}, label: nameOr("provider")},
	{Kind: KindRegion, Reference: "inventory.Region", Service: "inventory", Resource: "region",
		IDField: "region_code", Only: []string{"region_code", "name", "provider"},
		label: func(rec api.Record) string {
			name, code := rec.String("name"), rec.String("region_code")
			if name == "" {
				return code
			}
			return fmt.Sprintf("%s (%s)", name, code)
		}},
	{Kind: KindPlugin, Reference: "repository.Plugin", Service: "repository", Resource: "plugin",
		IDField: "plugin_id", Only: []string{"plugin_id", "name"}},
	{Kind: KindUser, Reference: "identity.User", Service: "identity", Resource: "user",
		IDField: "user_id", Only: []string{"user_id", "name"}, label: nameOr("user_id")},
	{Kind: KindSpotGroup, Reference: "spot_automation.SpotGroup", Service: "spot-automation", Resource: "spot-group",
		IDField: "spot_group_id", Only: []string{"spot_group_id", "name"}},
	{Kind: KindProtocol, Reference: "notification.Protocol", Service: "notification", Resource: "protocol",
		IDField: "protocol_id", Only: []string{"protocol_id", "name"}},
	{Kind: KindWebhook, Reference: "monitoring.Webhook", Service: "monitoring", Resource: "webhook",
		IDField: "webhook_id", Only: []string{"webhook_id", "name"}},
}

var (
	byKind      = make(map[Kind]Descriptor, len(descriptors))
	byReference = make(map[string]Kind, len(descriptors))
)

func init() {
	for _, d := range descriptors {
		byKind[d.Kind] = d
		byReference[strings.ToLower(d.Reference)] = d.Kind
	}
}

// Kinds returns every known kind in registration order.
func Kinds() []Kind {
	out := make([]Kind, len(descriptors))
	for i, d := range descriptors {
		out[i] = d.Kind
	}
	return out
}

// Lookup returns the descriptor for kind.
func Lookup(kind Kind) (Descriptor, bool) {
	d, ok := byKind[kind]
	return d, ok
}

// ParseKind resolves either a dotted schema reference ("inventory.Region")
// or a bare kind name ("region").
func ParseKind(ref string) (Kind, error) {
	ref = strings.TrimSpace(ref)
	if kind, ok := byReference[strings.ToLower(ref)]; ok {
		return kind, nil
	}
	if _, ok := byKind[Kind(ref)]; ok {
		return Kind(ref), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, ref)
}

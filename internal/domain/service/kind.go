package service

import "fmt"

// Kind is the enumerated service archetype. It fixes the set of port types a
// service of that kind must expose.
type Kind string

const (
	KindHelloWorld  Kind = "hello-world"
	KindHelloWorld2 Kind = "hello-world2"
)

// Kinds returns all known service kinds.
func Kinds() []Kind {
	return []Kind{KindHelloWorld, KindHelloWorld2}
}

// ParseKind validates a kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindHelloWorld, KindHelloWorld2:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown service kind %q", s)
}

func (k Kind) String() string {
	return string(k)
}

// Template describes the ports a service kind must expose. For a given kind
// the set of port-type identities is fixed; the port numbers are defaults the
// user may override.
type Template struct {
	Kind  Kind
	Ports []PortTemplate
}

// TemplateFor returns the port template of a kind.
func TemplateFor(kind Kind) Template {
	switch kind {
	case KindHelloWorld:
		return Template{
			Kind: KindHelloWorld,
			Ports: []PortTemplate{
				{Name: "HTTP", Port: 80, TransportProtocol: TransportTCP, ApplicationProtocol: ApplicationHTTP},
			},
		}
	case KindHelloWorld2:
		return Template{
			Kind: KindHelloWorld2,
			Ports: []PortTemplate{
				{Name: "HTTP/2", Port: 8080, TransportProtocol: TransportTCP, ApplicationProtocol: ApplicationHTTP},
				{Name: "HTTP/3", Port: 8081, TransportProtocol: TransportUDP, ApplicationProtocol: ApplicationHTTP},
			},
		}
	}
	return Template{Kind: kind}
}

// Templates returns the templates of every known kind.
func Templates() []Template {
	kinds := Kinds()
	templates := make([]Template, 0, len(kinds))
	for _, kind := range kinds {
		templates = append(templates, TemplateFor(kind))
	}
	return templates
}

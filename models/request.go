package models

// RequestKind is the closed set of request classes the server answers
type RequestKind uint8

const (
	KindUnknown RequestKind = iota
	KindInvalidResource
	KindHostName
	KindCPUName
	KindLoad
)

func (k RequestKind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindInvalidResource:
		return "invalid-resource"
	case KindHostName:
		return "hostname"
	case KindCPUName:
		return "cpu-name"
	case KindLoad:
		return "load"
	default:
		return "unknown"
	}
}

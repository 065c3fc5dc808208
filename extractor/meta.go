package extractor

import "hash/fnv"

// ClassMeta describes one entity class for presentation purposes.
type ClassMeta struct {
	Label string
	Color string
}

// BadgeColors is a foreground/background pair used for class badges.
type BadgeColors struct {
	Foreground string
	Background string
}

// Registry maps raw entity class codes to presentation metadata. It is an
// immutable value built once at startup and passed explicitly into the
// aggregation and report layers.
type Registry struct {
	classes map[string]ClassMeta
	palette []BadgeColors
}

// FallbackColor is used for classes missing from the registry.
const FallbackColor = "#00d4ff"

// NewRegistry builds a registry from the given class table. The caller's map
// is copied; later mutation of the argument does not affect the registry.
func NewRegistry(classes map[string]ClassMeta, palette []BadgeColors) *Registry {
	copied := make(map[string]ClassMeta, len(classes))
	for code, meta := range classes {
		copied[code] = meta
	}
	return &Registry{
		classes: copied,
		palette: append([]BadgeColors(nil), palette...),
	}
}

// DefaultRegistry returns the registry for the SecureBERT-NER label set.
// Adding a new class only requires a new entry here.
func DefaultRegistry() *Registry {
	return NewRegistry(map[string]ClassMeta{
		"TIME":    {Label: "Time Reference", Color: "#60a5fa"},
		"LOC":     {Label: "Location", Color: "#34d399"},
		"SECTEAM": {Label: "Security Team", Color: "#f472b6"},
		"TOOL":    {Label: "Tool / Software", Color: "#fb923c"},
		"IDTY":    {Label: "Identity / Person", Color: "#a78bfa"},
		"MAL":     {Label: "Malware", Color: "#f87171"},
		"APT":     {Label: "Advanced Persistent Threat", Color: "#ef4444"},
		"VULNAME": {Label: "Vulnerability Name", Color: "#facc15"},
		"VULID":   {Label: "Vulnerability ID", Color: "#fbbf24"},
		"ENCR":    {Label: "Encryption Method", Color: "#818cf8"},
		"FILE":    {Label: "File", Color: "#94a3b8"},
		"SHA2":    {Label: "SHA-256 Hash", Color: "#22d3ee"},
		"URL":     {Label: "URL", Color: "#4ade80"},
		"IP":      {Label: "IP Address", Color: "#2dd4bf"},
		"ACT":     {Label: "Action / Activity", Color: "#c084fc"},
		"MD5":     {Label: "MD5 Hash", Color: "#38bdf8"},
		"DOM":     {Label: "Domain", Color: "#86efac"},
		"OS":      {Label: "Operating System", Color: "#fdba74"},
		"SHA1":    {Label: "SHA-1 Hash", Color: "#67e8f9"},
		"EMAIL":   {Label: "Email Address", Color: "#d946ef"},
		"PROT":    {Label: "Protocol", Color: "#a3e635"},
	}, []BadgeColors{
		{"#00d4ff", "rgba(0,212,255,0.12)"},
		{"#7c3aed", "rgba(124,58,237,0.15)"},
		{"#00ff88", "rgba(0,255,136,0.12)"},
		{"#f59e0b", "rgba(245,158,11,0.12)"},
		{"#ef4444", "rgba(239,68,68,0.12)"},
		{"#a855f7", "rgba(168,85,247,0.12)"},
		{"#06b6d4", "rgba(6,182,212,0.12)"},
		{"#ec4899", "rgba(236,72,153,0.12)"},
	})
}

// Description returns the human-readable label for a class code, falling back
// to the raw code when the class is unknown.
func (r *Registry) Description(class string) string {
	if meta, ok := r.classes[class]; ok {
		return meta.Label
	}
	return class
}

// Color returns the accent color for a class code.
func (r *Registry) Color(class string) string {
	if meta, ok := r.classes[class]; ok {
		return meta.Color
	}
	return FallbackColor
}

// Badge cycles the badge palette deterministically by class name so the same
// class always renders with the same pair, run to run.
func (r *Registry) Badge(class string) BadgeColors {
	if len(r.palette) == 0 {
		return BadgeColors{Foreground: FallbackColor}
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(class))
	return r.palette[int(h.Sum32())%len(r.palette)]
}

// Known reports whether the class code is registered.
func (r *Registry) Known(class string) bool {
	_, ok := r.classes[class]
	return ok
}

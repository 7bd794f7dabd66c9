package ir

import "sort"

// AddressingScheme is how a target framework identifies one random choice.
type AddressingScheme int

const (
	// AddressingImplicit: the bound variable name itself is the identifier.
	AddressingImplicit AddressingScheme = iota
	// AddressingExplicit: every choice carries a unique string key used to
	// retrieve or constrain values in an external trace.
	AddressingExplicit
	// AddressingNamed: every choice carries a string name but binds its
	// value directly, with no external choice map.
	AddressingNamed
)

func (a AddressingScheme) String() string {
	switch a {
	case AddressingExplicit:
		return "explicit-string"
	case AddressingNamed:
		return "named"
	default:
		return "implicit"
	}
}

// Support is a backend's support level for one canonical distribution.
type Support int

const (
	// SupportNone: no equivalent exists; lint Error, CodegenError at lowering.
	SupportNone Support = iota
	// SupportNative: emitted as a direct rename.
	SupportNative
	// SupportRewrite: emitted through an argument or structural rewrite
	// that preserves semantics; no diagnostic.
	SupportRewrite
	// SupportWarn: a semantically equivalent rewrite exists but has
	// caveats; lint Warning, still emitted.
	SupportWarn
)

// BackendDescriptor declares one target framework's lowering contract.
type BackendDescriptor struct {
	// Name selects the backend ("turing", "gen", "pyro").
	Name string
	// Target describes the framework for humans.
	Target string
	// IndexBase is 0 or 1. One-based backends apply the NeedsOffset tag.
	IndexBase int
	// Addressing is the backend's choice-identification scheme.
	Addressing AddressingScheme
	// Distributions maps canonical names to support levels. Names absent
	// from the map are SupportNone.
	Distributions map[string]Support
	// TruncationSupport is the support level of the Truncated wrapper.
	TruncationSupport Support
}

// DistributionSupport returns the support level for a canonical name.
func (b BackendDescriptor) DistributionSupport(name string) Support {
	if name == TruncatedName {
		return b.TruncationSupport
	}
	return b.Distributions[name]
}

// Backends is the registry of lowering targets, keyed by backend name.
var Backends = map[string]BackendDescriptor{
	"turing": {
		Name:       "turing",
		Target:     "Turing.jl",
		IndexBase:  1,
		Addressing: AddressingImplicit,
		Distributions: map[string]Support{
			"Normal": SupportNative, "Cauchy": SupportNative,
			"HalfNormal": SupportRewrite, "HalfCauchy": SupportRewrite,
			"StudentT": SupportNative, "Beta": SupportNative,
			"Uniform": SupportNative, "Gamma": SupportRewrite,
			"Exponential": SupportRewrite, "Bernoulli": SupportNative,
			"Binomial": SupportNative, "Poisson": SupportNative,
			"Geometric": SupportNative, "DiscreteUniform": SupportNative,
			"Categorical": SupportRewrite, "Dirichlet": SupportRewrite,
		},
		TruncationSupport: SupportNative,
	},
	"gen": {
		Name:       "gen",
		Target:     "Gen.jl",
		IndexBase:  1,
		Addressing: AddressingExplicit,
		Distributions: map[string]Support{
			"Normal": SupportNative, "Cauchy": SupportNative,
			"HalfNormal": SupportNone, "HalfCauchy": SupportNone,
			"StudentT": SupportNone, "Beta": SupportNative,
			"Uniform": SupportNative, "Gamma": SupportRewrite,
			"Exponential": SupportNative, "Bernoulli": SupportNative,
			"Binomial": SupportNative, "Poisson": SupportNative,
			"Geometric": SupportNative, "DiscreteUniform": SupportNative,
			// The categorical lowering goes through a labeled @dist helper,
			// so the trace structure differs from a native categorical.
			"Categorical": SupportWarn, "Dirichlet": SupportRewrite,
		},
		TruncationSupport: SupportNone,
	},
	"pyro": {
		Name:       "pyro",
		Target:     "Pyro",
		IndexBase:  0,
		Addressing: AddressingNamed,
		Distributions: map[string]Support{
			"Normal": SupportNative, "Cauchy": SupportNative,
			"HalfNormal": SupportNative, "HalfCauchy": SupportNative,
			"StudentT": SupportNative, "Beta": SupportNative,
			"Uniform": SupportNative, "Gamma": SupportNative,
			"Exponential": SupportNative, "Bernoulli": SupportNative,
			"Binomial": SupportNative, "Poisson": SupportNative,
			"Geometric": SupportNative, "DiscreteUniform": SupportNone,
			"Categorical": SupportNative, "Dirichlet": SupportRewrite,
		},
		TruncationSupport: SupportNone,
	},
}

// BackendNames returns the registered backend names, sorted.
func BackendNames() []string {
	names := make([]string, 0, len(Backends))
	for name := range Backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupBackend resolves a backend name.
func LookupBackend(name string) (BackendDescriptor, bool) {
	b, ok := Backends[name]
	return b, ok
}

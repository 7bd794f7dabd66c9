package ir

// ParamRole names the statistical role of one distribution parameter.
type ParamRole string

const (
	ParamLocation      ParamRole = "location"
	ParamScale         ParamRole = "scale"
	ParamShape         ParamRole = "shape"
	ParamRate          ParamRole = "rate"
	ParamProbability   ParamRole = "probability"
	ParamCount         ParamRole = "count"
	ParamLower         ParamRole = "lower"
	ParamUpper         ParamRole = "upper"
	ParamConcentration ParamRole = "concentration"
	ParamLength        ParamRole = "length"
	ParamProbVector    ParamRole = "probability-vector"
	ParamDegrees       ParamRole = "degrees-of-freedom"
)

// Descriptor is one entry of the canonical distribution catalog.
type Descriptor struct {
	// Name is the canonical distribution name as written in the source.
	Name string
	// Params gives the ordered roles of the positional parameters.
	Params []ParamRole
	// Discrete marks distributions whose draws are integers. Draws are
	// stored in real-typed containers regardless, which is why indices fed
	// by them carry the RequiresTrunc tag.
	Discrete bool
	// VectorValued marks distributions whose draw is a vector.
	VectorValued bool
}

// Arity returns the required argument count.
func (d *Descriptor) Arity() int {
	return len(d.Params)
}

// TruncatedName is the wrapper that bounds another distribution:
// Truncated(dist, lo, hi).
const TruncatedName = "Truncated"

// Catalog is the fixed canonical distribution catalog. Resolution against
// it happens once, in Build; backends then remap by canonical name only.
var Catalog = map[string]*Descriptor{
	"Normal":          {Name: "Normal", Params: []ParamRole{ParamLocation, ParamScale}},
	"Cauchy":          {Name: "Cauchy", Params: []ParamRole{ParamLocation, ParamScale}},
	"HalfNormal":      {Name: "HalfNormal", Params: []ParamRole{ParamScale}},
	"HalfCauchy":      {Name: "HalfCauchy", Params: []ParamRole{ParamScale}},
	"StudentT":        {Name: "StudentT", Params: []ParamRole{ParamDegrees}},
	"Beta":            {Name: "Beta", Params: []ParamRole{ParamShape, ParamShape}},
	"Uniform":         {Name: "Uniform", Params: []ParamRole{ParamLower, ParamUpper}},
	"Gamma":           {Name: "Gamma", Params: []ParamRole{ParamShape, ParamRate}},
	"Exponential":     {Name: "Exponential", Params: []ParamRole{ParamRate}},
	"Bernoulli":       {Name: "Bernoulli", Params: []ParamRole{ParamProbability}, Discrete: true},
	"Binomial":        {Name: "Binomial", Params: []ParamRole{ParamCount, ParamProbability}, Discrete: true},
	"Poisson":         {Name: "Poisson", Params: []ParamRole{ParamRate}, Discrete: true},
	"Geometric":       {Name: "Geometric", Params: []ParamRole{ParamProbability}, Discrete: true},
	"DiscreteUniform": {Name: "DiscreteUniform", Params: []ParamRole{ParamLower, ParamUpper}, Discrete: true},
	"Categorical":     {Name: "Categorical", Params: []ParamRole{ParamProbVector}, Discrete: true},
	"Dirichlet":       {Name: "Dirichlet", Params: []ParamRole{ParamConcentration, ParamLength}, VectorValued: true},
}

// LookupDistribution resolves a canonical distribution name.
func LookupDistribution(name string) (*Descriptor, bool) {
	d, ok := Catalog[name]
	return d, ok
}

// IsDistribution reports whether name is in the catalog or is the
// truncation wrapper.
func IsDistribution(name string) bool {
	if name == TruncatedName {
		return true
	}
	_, ok := Catalog[name]
	return ok
}

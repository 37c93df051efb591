package elastic

import "fmt"

// Material is a homogeneous isotropic linear-elastic solid.
type Material struct {
	Young   float64 `yaml:"young" json:"young"`
	Poisson float64 `yaml:"poisson" json:"poisson"`
}

func (m Material) Validate() error {
	if m.Young <= 0 {
		return fmt.Errorf("young's modulus %v must be positive: %w", m.Young, ErrConfig)
	}
	if m.Poisson <= -1 || m.Poisson >= 0.5 {
		return fmt.Errorf("poisson ratio %v outside (-1, 0.5): %w", m.Poisson, ErrConfig)
	}
	return nil
}

// Lame returns the shear modulus mu and Lame's first parameter lambda.
func (m Material) Lame() (mu, lambda float64) {
	e, nu := m.Young, m.Poisson
	mu = e / (2 * (1 + nu))
	lambda = e * nu / ((1 - 2*nu) * (1 + nu))
	return mu, lambda
}

// PWave returns the constrained modulus 2mu+lambda, the stiffest response
// of the material and the scale that bounds the stable relaxation step.
func (m Material) PWave() float64 {
	mu, lambda := m.Lame()
	return 2*mu + lambda
}

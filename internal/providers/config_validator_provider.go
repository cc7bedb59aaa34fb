package providers

import (
	"fmt"
	"srtrack/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (c *CnfValidator) Validate() error {
	v := validate.Struct(c.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %s", v.Errors.One())
	}
	if len(c.conf.Endpoints.RankingCandidates) == 0 {
		return fmt.Errorf("invalid config: at least one ranking candidate endpoint is required")
	}
	return nil
}

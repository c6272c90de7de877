package config

import (
	"fmt"

	"github.com/crytic/contractops/failures"
	"github.com/crytic/contractops/utils"
	"github.com/holiman/uint256"
	"golang.org/x/exp/slices"
)

// MaxValue returns the configured transaction value ceiling, or nil when there is none.
func (s SecurityConfig) MaxValue() (*uint256.Int, error) {
	return utils.ParseOptionalUint256("security.maxTransactionValue", s.MaxTransactionValue)
}

// CheckWrite enforces the write gate for a transaction carrying value wei. A nil value is treated as zero.
func (s SecurityConfig) CheckWrite(value *uint256.Int) error {
	if !s.AllowWriteOperations {
		return &failures.WriteRejectedError{Reason: "write operations are disabled. Set security.allowWriteOperations to true to enable them"}
	}
	max, err := s.MaxValue()
	if err != nil {
		return err
	}
	if max != nil && value != nil && value.Gt(max) {
		return &failures.WriteRejectedError{
			Reason: fmt.Sprintf("transaction value %s wei exceeds security.maxTransactionValue %s wei", value.Dec(), max.Dec()),
		}
	}
	return nil
}

func sortedNetworkNames(p *ProjectConfig) []string {
	names := make([]string, 0, len(p.Networks))
	for name, profile := range p.Networks {
		if profile != nil {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

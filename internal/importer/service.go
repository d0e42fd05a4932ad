package importer

import (
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/budgetapp/internal/importer/cgd"
	"github.com/MrJamesThe3rd/budgetapp/internal/importer/plain"
	"github.com/MrJamesThe3rd/budgetapp/internal/transaction"
)

type Service struct {
	importers map[Bank]Importer
}

func NewService() *Service {
	return &Service{
		importers: map[Bank]Importer{
			BankCGD:   cgd.NewParser(),
			BankPlain: plain.NewParser(),
		},
	}
}

// Banks lists the supported export formats.
func (s *Service) Banks() []Bank {
	return []Bank{BankCGD, BankPlain}
}

func (s *Service) Import(bank Bank, r io.Reader) ([]transaction.ImportParams, error) {
	importer, ok := s.importers[bank]
	if !ok {
		return nil, fmt.Errorf("unknown bank: %s", bank)
	}

	return importer.Parse(r)
}

package memory

import (
	"context"
	"fmt"
	"os"

	"actuator-quiz/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileBankLoader reads a question bank from a YAML file. The file's id, when
// set, must match the requested bank.
type FileBankLoader struct {
	path string
}

func NewFileBankLoader(path string) *FileBankLoader {
	return &FileBankLoader{path: path}
}

func (l *FileBankLoader) LoadBank(_ context.Context, bankID string) (domain.QuestionBank, error) {
	bank, err := ReadBankFile(l.path)
	if err != nil {
		return domain.QuestionBank{}, err
	}
	if bank.ID == "" {
		bank.ID = bankID
	}
	if bank.ID != bankID {
		return domain.QuestionBank{}, fmt.Errorf("%s holds bank %q: %w", l.path, bank.ID, domain.ErrBankNotFound)
	}
	return bank, nil
}

// ReadBankFile decodes and validates a YAML question bank.
func ReadBankFile(path string) (domain.QuestionBank, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.QuestionBank{}, domain.Configurationf("read bank file: %v", err)
	}
	var bank domain.QuestionBank
	if err := yaml.Unmarshal(raw, &bank); err != nil {
		return domain.QuestionBank{}, domain.Configurationf("parse bank file %s: %v", path, err)
	}
	if err := bank.Validate(); err != nil {
		return domain.QuestionBank{}, err
	}
	return bank, nil
}

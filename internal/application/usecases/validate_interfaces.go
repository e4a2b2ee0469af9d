package usecases

import (
	"context"

	"debinterface-agent/internal/domain/errors"
	"debinterface-agent/internal/domain/interfaces"
	"debinterface-agent/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

// InvalidAdapter는 검증에 실패한 어댑터와 그 이유입니다
type InvalidAdapter struct {
	Name string
	Err  error
}

// ValidateInterfacesOutput은 interfaces 파일 검증 결과입니다
type ValidateInterfacesOutput struct {
	Valid   []string
	Invalid []InvalidAdapter
}

// ValidateInterfacesUseCase는 interfaces 파일의 모든 어댑터를 스키마로 검증하는 유스케이스입니다
type ValidateInterfacesUseCase struct {
	reader interfaces.AdapterReader
	path   string
	logger *logrus.Logger
}

// NewValidateInterfacesUseCase는 새로운 ValidateInterfacesUseCase를 생성합니다
func NewValidateInterfacesUseCase(reader interfaces.AdapterReader, path string, logger *logrus.Logger) *ValidateInterfacesUseCase {
	return &ValidateInterfacesUseCase{
		reader: reader,
		path:   path,
		logger: logger,
	}
}

// Execute는 파일을 파싱하고 어댑터별 검증 결과를 반환합니다
func (uc *ValidateInterfacesUseCase) Execute(ctx context.Context) (*ValidateInterfacesOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	adapters, err := uc.reader.Parse(uc.path)
	if err != nil {
		return nil, errors.NewParseError("interfaces 파일 파싱 실패", err)
	}

	output := &ValidateInterfacesOutput{}
	for _, adapter := range adapters {
		if err := adapter.ValidateAll(); err != nil {
			uc.logger.WithFields(logrus.Fields{
				"adapter": adapter.Name(),
				"error":   err,
			}).Warn("어댑터 검증 실패")
			output.Invalid = append(output.Invalid, InvalidAdapter{Name: adapter.Name(), Err: err})
			continue
		}
		output.Valid = append(output.Valid, adapter.Name())
	}

	metrics.SetInvalidAdapters(len(output.Invalid))
	return output, nil
}

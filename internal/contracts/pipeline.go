package contracts

import (
	"errors"
	"fmt"
	"time"
)

// Pipeline Stage 정의 (SSOT)
// 모든 로그, 에러, 결과 row에서 이 상수를 사용해야 함
//
// 시뮬레이션 흐름:
//   S0 → S1 → S2 → S3 → S4
//   Data  Signals  Translation  Execution  Performance

// Stage represents a simulation pipeline stage
type Stage string

const (
	// StageData S0: 입력 데이터 검증
	// 책임: 가격 이력 존재/정합성, 기간 검증
	StageData Stage = "S0_DATA"

	// StageSignals S1: 전략 시그널 산출
	// 책임: Strategy.Evaluate 호출, 시그널 구조 검증
	StageSignals Stage = "S1_SIGNALS"

	// StageTranslation S2: 시그널 → 목표 비중 변환
	// 책임: 파티션, 옵티마이저 대체, 블렌드, 비중 합 검증
	StageTranslation Stage = "S2_TRANSLATION"

	// StageExecution S3: 리밸런스 주문 실행
	// 책임: 매도 우선, 현금 제약, 체결 기록
	StageExecution Stage = "S3_EXECUTION"

	// StagePerformance S4: 성과 계산
	// 책임: 지표 산출, 벤치마크 정렬
	StagePerformance Stage = "S4_PERFORMANCE"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S1")
func (s Stage) ShortName() string {
	switch s {
	case StageData:
		return "S0"
	case StageSignals:
		return "S1"
	case StageTranslation:
		return "S2"
	case StageExecution:
		return "S3"
	case StagePerformance:
		return "S4"
	default:
		return "UNKNOWN"
	}
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StageData,
		StageSignals,
		StageTranslation,
		StageExecution,
		StagePerformance,
	}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}

// StageError wraps an error with the pipeline stage and simulation date
// where it occurred. A StageError aborts the run; partial results are
// never returned.
type StageError struct {
	Stage Stage
	Date  time.Time
	Err   error
}

// NewStageError creates a StageError for the given stage and date
func NewStageError(stage Stage, date time.Time, err error) *StageError {
	return &StageError{Stage: stage, Date: date, Err: err}
}

// Error implements the error interface
func (e *StageError) Error() string {
	if e.Date.IsZero() {
		return fmt.Sprintf("%s: %v", e.Stage.ShortName(), e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Stage.ShortName(), e.Date.Format("2006-01-02"), e.Err)
}

// Unwrap returns the wrapped error
func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf extracts the failing stage from an error chain.
// The second return value is false when no StageError is present.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

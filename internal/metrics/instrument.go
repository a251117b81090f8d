package metrics

import (
	"errors"
	"time"

	"github.com/hitoshi/memelandia/internal/model"
)

// Classifier は操作の戻り値から結果ラベルを決める。
type Classifier[T any] func(result T, err error) string

// Instrument は1つの操作を計測境界で包む。
// 呼び出し回数、処理時間、classifyが返す結果ラベルを記録し、fnの戻り値をそのまま返す。
// classifyがnilの場合はerrの有無でsuccess/errorを判定する。
func Instrument[T any](r Recorder, entity, operation string, classify Classifier[T], fn func() (T, error)) (T, error) {
	if r == nil {
		r = Nop{}
	}
	r.RecordCall(entity, operation)

	start := time.Now()
	result, err := fn()
	r.RecordDuration(entity, operation, time.Since(start))

	outcome := OutcomeSuccess
	if classify != nil {
		outcome = classify(result, err)
	} else if err != nil {
		outcome = OutcomeError
	}
	r.RecordOutcome(entity, operation, outcome)

	return result, err
}

// Found は取得系操作の結果ラベルを返す。結果がnilならnot_found。
func Found[T any](v *T, err error) string {
	switch {
	case err != nil:
		return OutcomeOf(err)
	case v == nil:
		return OutcomeNotFound
	default:
		return OutcomeSuccess
	}
}

// Deleted は削除系操作の結果ラベルを返す。削除対象がなければnot_found。
func Deleted(deleted bool, err error) string {
	switch {
	case err != nil:
		return OutcomeOf(err)
	case !deleted:
		return OutcomeNotFound
	default:
		return OutcomeSuccess
	}
}

// ByError は戻り値を見ずにエラーの種別だけで結果ラベルを決めるClassifier。
func ByError[T any](_ T, err error) string {
	return OutcomeOf(err)
}

// OutcomeOf はエラーの種別を結果ラベルに変換する。
func OutcomeOf(err error) string {
	if err == nil {
		return OutcomeSuccess
	}

	var refErr *model.ReferenceNotFoundError
	if errors.As(err, &refErr) {
		if refErr.Kind == model.KindUser {
			return OutcomeUserNotFound
		}
		return OutcomeCategoryNotFound
	}

	var transportErr *model.TransportError
	if errors.As(err, &transportErr) {
		return OutcomeTransportError
	}

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case model.ErrCodeDuplicateName:
			return OutcomeDuplicate
		case model.ErrCodeInvalidRequest:
			return OutcomeInvalid
		case model.ErrCodeNoDataAvailable:
			return OutcomeEmpty
		case model.ErrCodeCategoryNotFound, model.ErrCodeUserNotFound, model.ErrCodeMemeNotFound:
			return OutcomeNotFound
		}
	}

	return OutcomeError
}

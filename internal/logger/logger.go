// Package logger はslogによるJSON構造化ログの初期化を提供する。
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Setup はJSON構造化ログ出力のslog.Loggerを生成して返す。
// serviceが空でない場合は全レコードにservice属性を付与する。
func Setup(w io.Writer, level slog.Level, service string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	l := slog.New(handler)
	if service != "" {
		l = l.With(slog.String("service", service))
	}
	return l
}

// SetupDefault はJSON構造化ログ出力をグローバルロガーとして設定し、そのロガーを返す。
// 本番ではos.Stdoutを渡すことを想定している。
func SetupDefault(w io.Writer, level slog.Level, service string) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	l := Setup(w, level, service)
	slog.SetDefault(l)
	return l
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// Output — форматирование результатов команд: таблица для людей,
// JSON (--json) для скриптов. Данные идут в stdout, служебные
// сообщения — в stderr, чтобы не ломать pipe'ы.
type Output struct {
	asJSON bool
	data   io.Writer
	msg    io.Writer
}

// NewOutput создаёт Output для выбранного режима вывода.
func NewOutput(asJSON bool) *Output {
	return &Output{
		asJSON: asJSON,
		data:   os.Stdout,
		msg:    os.Stderr,
	}
}

// Print выводит результат выборки: в JSON-режиме — исходные записи
// с отступами, иначе — таблицу с подчёркнутым заголовком.
func (o *Output) Print(headers []string, rows [][]string, raw any) {
	if o.asJSON {
		enc := json.NewEncoder(o.data)
		enc.SetIndent("", "  ")
		enc.Encode(raw)
		return
	}

	if len(rows) == 0 {
		fmt.Fprintln(o.msg, "no records")
		return
	}

	tw := tabwriter.NewWriter(o.data, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	underline := make([]string, len(headers))
	for i, h := range headers {
		underline[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(underline, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

// Success выводит подтверждение выполненной команды в stderr.
func (o *Output) Success(msg string) {
	fmt.Fprintln(o.msg, msg)
}

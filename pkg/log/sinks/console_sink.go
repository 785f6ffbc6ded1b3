package sinks

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mkershaw/bookpilot/pkg/log"
)

type ConsoleSink struct{}

func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{}
}

func (c *ConsoleSink) Write(event *log.LogEvent) error {
	step := getStringField(event.Fields, "step")
	task := getStringField(event.Fields, "task")
	errorMsg := getStringField(event.Fields, "error")
	levelStr := strings.ToUpper(event.Level.String())
	timestampStr := event.Timestamp.Format(time.RFC3339)

	levelColorMap := map[log.Level]*color.Color{
		log.DebugLevel: color.New(color.FgCyan),
		log.InfoLevel:  color.New(color.FgGreen),
		log.WarnLevel:  color.New(color.FgYellow),
		log.ErrorLevel: color.New(color.FgRed),
		log.FatalLevel: color.New(color.FgRed, color.Bold),
	}

	levelFmt := color.New(color.FgWhite).SprintFunc()
	if lc, ok := levelColorMap[event.Level]; ok {
		levelFmt = lc.SprintFunc()
	}

	scope := step
	if scope == "" {
		scope = task
	}
	if scope == "" {
		scope = "run"
	}

	prefix := fmt.Sprintf("[%s %s] %s: ",
		levelFmt(levelStr),
		color.WhiteString(timestampStr),
		color.CyanString(scope),
	)

	var output string
	switch {
	case event.Message != "" && errorMsg != "":
		output = fmt.Sprintf("%s%s: %s", prefix, event.Message, errorMsg)
	case event.Message != "":
		output = prefix + event.Message
	case errorMsg != "":
		output = prefix + errorMsg
	default:
		fieldsStr, _ := json.Marshal(event.Fields)
		output = prefix + string(fieldsStr)
	}
	fmt.Println(output)
	return nil
}

func (c *ConsoleSink) Close() error {
	return nil
}

func getStringField(fields map[string]any, key string) string {
	if val, ok := fields[key]; ok {
		if strVal, isStr := val.(string); isStr {
			return strVal
		}
	}
	return ""
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logutil

import (
	"fmt"
	"strings"

	"github.com/hyperledger/aries-framework-go/spi/log"
)

const lineFormat = "command=[%s] action=[%s]%s %s=[%s]"

// LogError logs a failed command action.
func LogError(logger log.Logger, command, action, errMsg string, data ...string) {
	logger.Errorf(lineFormat, command, action, joinData(data), "errMsg", errMsg)
}

// LogWarn logs a command action rejected because of its input.
func LogWarn(logger log.Logger, command, action, msg string, data ...string) {
	logger.Warnf(lineFormat, command, action, joinData(data), "msg", msg)
}

// LogDebug is a utility function to log debug messages.
func LogDebug(logger log.Logger, command, action, msg string, data ...string) {
	logger.Debugf(lineFormat, command, action, joinData(data), "msg", msg)
}

// LogInfo is a utility function to log info messages.
func LogInfo(logger log.Logger, command, action, msg string, data ...string) {
	logger.Infof(lineFormat, command, action, joinData(data), "msg", msg)
}

// CreateKeyValueString creates a key=[value] pair for the data of a log line.
func CreateKeyValueString(key, val string) string {
	return fmt.Sprintf("%s=[%s]", key, val)
}

func joinData(data []string) string {
	if len(data) == 0 {
		return ""
	}

	return " " + strings.Join(data, " ")
}

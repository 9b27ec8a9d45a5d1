package dao

import (
	logSDK "github.com/Laisky/go-utils/v6/log"

	"github.com/Laisky/zine-site/library/log"
)

func testLogger() logSDK.Logger {
	return log.Logger.Named("test")
}

func ptr(s string) *string { return &s }

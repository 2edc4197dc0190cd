package cmd

import (
	"log"
	"os"
)

var (
	// globals used to patch over calls to os.Exit() during test

	logFatalln = log.Fatalln
	osExit     = os.Exit

	// infoLogger writes informative messages to os.Stderr, keeping the formatted output clean
	infoLogger = log.New(os.Stderr, "", 0)
)

// wrapFatalln is for setup errors, before any runtime is opened
func wrapFatalln(msg string, err error) {
	if err == nil {
		logFatalln(msg)
		return
	}
	logFatalln(msg + ": " + err.Error())
}

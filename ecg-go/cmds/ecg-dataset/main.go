package main

import (
	"github.com/heartscribe/heartscribe/ecg-golib/cmdline"
)

func main() {
	cmdline.MustDispatch(generateCmd, enhanceCmd, evaluateCmd, diagnoseCmd)
}

package core

import "time"

// Version identifies the build, set via -ldflags at build time.
var Version string

// BuildTime records when this binary was built, set via -ldflags.
var BuildTime string

// StartTimestamp is the time this process started; cmd/svsdemo sets it
// at the top of main, before any Logic instance is created.
var StartTimestamp time.Time

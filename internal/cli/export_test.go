package cli

// Export internal functions for testing.

// RunSplit exports runSplit for testing.
var RunSplit = runSplit

// RunWatch exports runWatch for testing.
var RunWatch = runWatch

// RunConfigSet exports runConfigSet for testing.
var RunConfigSet = runConfigSet

// RunConfigGet exports runConfigGet for testing.
var RunConfigGet = runConfigGet

// RunConfigList exports runConfigList for testing.
var RunConfigList = runConfigList

// ResolveSettings exports resolveSettings for testing.
var ResolveSettings = resolveSettings

// TranscodeOutputs exports transcodeOutputs for testing.
var TranscodeOutputs = transcodeOutputs

// SplitOptions exports splitOptions for testing.
type SplitOptions = splitOptions

// WatchOptions exports watchOptions for testing.
type WatchOptions = watchOptions

// SegmentOptions exports segmentOptions for testing.
type SegmentOptions = segmentOptions

// Settings exports settings for testing.
type Settings = settings

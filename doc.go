// Package audiodsp runs the per-stream DSP pipeline of a media player's
// audio engine: optional resampling, a selectable master transform such
// as the surround to stereo downmix, and speaker correction (gain, soft
// clamp and distance delay) or a calibration signal in post-processing.
//
// # Usage
//
// A Registry owns the shared speaker corrections and up to MaxStreams
// concurrently active streams:
//
//	reg, err := audiodsp.NewRegistry(audiodsp.Config{
//	    Store: audiodsp.FileStore{Dir: profileDir},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reg.Close()
//
//	h, err := reg.Create(streamSettings, streamProps)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s, _ := reg.Stream(h)
//	_ = s.MasterProcessSetMode(audiodsp.ModeTypeMasterProcess, audiodsp.ModeStereoDownmix, 0)
//	_ = s.Initialize(streamSettings)
//
//	for block := range blocks {
//	    n := s.MasterProcess(block.In, block.Mid, block.Frames)
//	    s.PostProcess(audiodsp.PostProcessSpeakerCorrection, block.Mid, block.Out, n)
//	}
//
// Blocks are planar [][]float32 slices indexed by Channel; slots for
// channels absent from a layout may be nil.
//
// # Concurrency
//
// Per-block entry points on Stream never allocate in steady state, never
// fail and never block on anything but the registry mutex, which
// post-processing holds for one block at a time. Gain, delay and
// calibration changes made from other goroutines take effect at the next
// block boundary, so a block never mixes old and new values.
package audiodsp

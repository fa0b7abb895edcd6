package request

import "time"

// Recorder receives call statistics. monitoring.Metrics implements it.
type Recorder interface {
	ObserveCall(method, outcome string, duration time.Duration)
	ObserveUpload(outcome string, files int, duration time.Duration)
	ObserveFinalizers(count int)
	ObserveTaskRegistered(tasks int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCall(string, string, time.Duration) {}
func (nopRecorder) ObserveUpload(string, int, time.Duration)  {}
func (nopRecorder) ObserveFinalizers(int)                     {}
func (nopRecorder) ObserveTaskRegistered(int)                 {}

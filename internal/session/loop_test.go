package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/detector"
)

func startTestSession(t *testing.T, mocks map[detector.Model]*detector.MockDetector, mode Mode) *Session {
	t.Helper()

	s := New(Config{
		Mode:        mode,
		NewDetector: newMockFactory(mocks),
	})
	s.SetCamera(capture.NewMockCamera(testFrames(t), true))

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(s.Stop)

	waitFor(t, func() bool { return s.Ready() })
	return s
}

func TestLoop_PublishesHandClassification(t *testing.T) {
	mocks := newMocks()
	mocks[detector.ModelHand].SetSets([]detector.LandmarkSet{detector.ScissorsHandLandmarks()})

	s := startTestSession(t, mocks, ModeHandGesture)

	waitFor(t, func() bool { return s.Latest() != nil })

	update := s.Latest()
	if update.Mode != ModeHandGesture {
		t.Errorf("update mode = %s, want %s", update.Mode, ModeHandGesture)
	}
	if update.Hand == nil {
		t.Fatal("expected a hand classification")
	}
	if update.Hand.Label != classify.GestureScissors {
		t.Errorf("label = %s, want SCISSORS", update.Hand.Label)
	}
	if update.Hand.ExtendedCount != 2 {
		t.Errorf("extended count = %d, want 2", update.Hand.ExtendedCount)
	}
	if update.Landmarks.Empty() {
		t.Error("update should carry the raw landmarks")
	}

	snapshot := s.Snapshot()
	if snapshot == nil {
		t.Fatal("expected a composited snapshot")
	}
	snapshot.Close()
}

func TestLoop_UpdatesCarryIncreasingSeq(t *testing.T) {
	mocks := newMocks()
	mocks[detector.ModelHand].SetSets([]detector.LandmarkSet{detector.FistHandLandmarks()})

	s := startTestSession(t, mocks, ModeHandGesture)

	waitFor(t, func() bool { return s.Latest() != nil })
	first := s.Latest()
	if first.Seq == 0 {
		t.Fatal("published updates must carry a nonzero sequence number")
	}

	// Timestamps can collide at millisecond granularity; the sequence number
	// is what distinguishes consecutive updates.
	waitFor(t, func() bool { return s.Latest().Seq > first.Seq })
	second := s.Latest()
	if second.Seq <= first.Seq {
		t.Errorf("seq did not increase: %d then %d", first.Seq, second.Seq)
	}
}

func TestLoop_SurvivesDetectionFailure(t *testing.T) {
	mocks := newMocks()
	mocks[detector.ModelHand].SetError(errors.New("inference crashed"))

	s := startTestSession(t, mocks, ModeHandGesture)

	// The failing detector must keep being invoked tick after tick: one
	// bad frame never stops the loop.
	waitFor(t, func() bool { return mocks[detector.ModelHand].Calls() >= 3 })

	// Recovery on the next tick once detection works again
	mocks[detector.ModelHand].SetError(nil)
	mocks[detector.ModelHand].SetSets([]detector.LandmarkSet{detector.FistHandLandmarks()})

	waitFor(t, func() bool {
		u := s.Latest()
		return u != nil && u.Hand != nil && u.Hand.Label == classify.GestureRock
	})
}

func TestLoop_EmptyDetectionYieldsPromptPath(t *testing.T) {
	mocks := newMocks()
	// No sets configured: every mode reports no subject

	s := startTestSession(t, mocks, ModeBodyPose)

	waitFor(t, func() bool { return s.Latest() != nil })

	update := s.Latest()
	if update.Body != nil || update.Face != nil || update.Hand != nil {
		t.Error("no-subject frame must not carry a classification")
	}
	if !update.Landmarks.Empty() {
		t.Error("landmarks should be empty")
	}

	// The prompt still composites a frame
	snapshot := s.Snapshot()
	if snapshot == nil {
		t.Fatal("expected a snapshot on the prompt path")
	}
	snapshot.Close()
}

func TestLoop_ModeSwitchTakesEffectNextTick(t *testing.T) {
	mocks := newMocks()
	mocks[detector.ModelHand].SetSets([]detector.LandmarkSet{detector.OpenPalmHandLandmarks()})
	mocks[detector.ModelPose].SetSets([]detector.LandmarkSet{detector.VictoryBodyLandmarks()})

	s := startTestSession(t, mocks, ModeHandGesture)

	waitFor(t, func() bool {
		u := s.Latest()
		return u != nil && u.Hand != nil
	})

	s.SetMode(ModeBodyPose)

	waitFor(t, func() bool {
		u := s.Latest()
		return u != nil && u.Mode == ModeBodyPose
	})

	update := s.Latest()
	if update.Body == nil {
		t.Fatal("expected a body classification after the mode switch")
	}
	if !update.Body.IsVictory {
		t.Error("victory fixture should classify as victory")
	}
	if update.Hand != nil {
		t.Error("stale hand classification must not survive a mode switch")
	}
}

func TestLoop_OrderingNoOverlappingDetection(t *testing.T) {
	mocks := newMocks()

	var mu sync.Mutex
	var concurrent, max int
	blocking := &blockingDetector{
		MockDetector: mocks[detector.ModelHand],
		onDetect: func() {
			mu.Lock()
			concurrent++
			if concurrent > max {
				max = concurrent
			}
			mu.Unlock()

			time.Sleep(20 * time.Millisecond)

			mu.Lock()
			concurrent--
			mu.Unlock()
		},
	}

	factory := func(model detector.Model, cfg detector.Config) (detector.Detector, error) {
		if model == detector.ModelHand {
			return blocking, nil
		}
		return mocks[model], nil
	}

	s := New(Config{Mode: ModeHandGesture, NewDetector: factory})
	s.SetCamera(capture.NewMockCamera(testFrames(t), true))
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	waitFor(t, func() bool { return s.Ready() })
	waitFor(t, func() bool { return blocking.Calls() >= 5 })

	mu.Lock()
	observed := max
	mu.Unlock()
	if observed > 1 {
		t.Errorf("observed %d overlapping detector invocations, want at most 1", observed)
	}
}

// blockingDetector wraps a mock and runs a callback inside DetectForVideo.
type blockingDetector struct {
	*detector.MockDetector
	onDetect func()
}

func (d *blockingDetector) DetectForVideo(frame *gocv.Mat, timestampMs int64) (*detector.Result, error) {
	d.onDetect()
	return d.MockDetector.DetectForVideo(frame, timestampMs)
}

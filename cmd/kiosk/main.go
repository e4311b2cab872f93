package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sekretariat-digital/bukutamu/internal/kiosk"
)

// Terminal front-end for the guest attendance flow: the same protocol the
// kiosk web page runs, driven from flags. Useful for smoke-testing an event
// QR token against a live server.
func main() {
	var (
		serverURL   = flag.String("server", "http://localhost:8080", "guestbook server base URL")
		qrToken     = flag.String("qr", "", "event QR token")
		fullName    = flag.String("name", "", "guest full name")
		institution = flag.String("institution", "", "guest institution")
		position    = flag.String("position", "", "guest position")
		purpose     = flag.String("purpose", "", "visit purpose")
		photoList   = flag.String("photos", "", "comma-separated photo file paths")
		statePath   = flag.String("state", defaultStatePath(), "device identity file")
	)
	flag.Parse()

	if *qrToken == "" {
		log.Fatal("-qr is required")
	}

	ctx := context.Background()

	generator := kiosk.NewGenerator(kiosk.NewFileIdentityStore(*statePath), collectSignals)
	cache := kiosk.NewSubmissionCache(kiosk.NewMemoryCacheStore())
	oracle := kiosk.NewOracle(*serverURL, nil)
	submitter := kiosk.NewSubmitter(*serverURL, nil)

	page := kiosk.NewPage(*qrToken, generator, cache, oracle, submitter)

	switch page.Load(ctx) {
	case kiosk.StateEventUnavailable:
		if err := page.LoadError(); err != nil {
			log.Fatalf("could not reach the server: %v", err)
		}
		log.Fatal("event not found or no longer active")
	case kiosk.StateAlreadySubmitted:
		printRecord(page)
		return
	}

	event := page.Event()
	fmt.Printf("Event: %s (%s, %s)\n", event.Name, event.Location, event.Date.Format("2006-01-02"))
	fmt.Printf("Device: %s\n", page.DeviceID())

	if *fullName == "" {
		log.Fatal("-name is required to submit")
	}

	attendance := kiosk.GuestAttendance{
		FullName:    *fullName,
		Institution: *institution,
		Position:    *position,
		Purpose:     *purpose,
		Photos:      loadPhotos(*photoList),
	}

	resolution, err := page.Submit(ctx, attendance, func(percent int) {
		fmt.Printf("\ruploading... %3d%%", percent)
	})
	fmt.Println()
	if err != nil {
		log.Fatalf("submit: %v", err)
	}

	switch resolution.State {
	case kiosk.StateAlreadySubmitted:
		printRecord(page)
	case kiosk.StateReadyToSubmit:
		fmt.Println("form rejected:")
		for field, reason := range resolution.Validation.Fields {
			fmt.Printf("  %s: %s\n", field, reason)
		}
		os.Exit(1)
	case kiosk.StateSubmitFailed:
		log.Fatalf("submission failed, retry later: %v", resolution.Transport)
	}
}

func collectSignals() (kiosk.Signals, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return kiosk.Signals{}, err
	}
	return kiosk.Signals{
		UserAgent: "bukutamu-kiosk/" + runtime.Version(),
		Locale:    os.Getenv("LANG"),
		Timezone:  os.Getenv("TZ"),
		CPUCount:  runtime.NumCPU(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH + "/" + hostname,
	}, nil
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bukutamu-device.json"
	}
	return filepath.Join(home, ".bukutamu-device.json")
}

func loadPhotos(list string) []kiosk.Photo {
	if list == "" {
		return nil
	}

	var photos []kiosk.Photo
	for _, path := range strings.Split(list, ",") {
		path = strings.TrimSpace(path)
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("failed to read photo %s: %v", path, err)
		}
		contentType := mime.TypeByExtension(filepath.Ext(path))
		photos = append(photos, kiosk.Photo{
			Filename:    filepath.Base(path),
			ContentType: contentType,
			Data:        data,
		})
	}
	return photos
}

func printRecord(page *kiosk.Page) {
	record := page.Record()
	fmt.Println("Attendance already recorded for this device:")
	fmt.Printf("  name:      %s\n", record.Payload.FullName)
	if record.Payload.Institution != "" {
		fmt.Printf("  from:      %s\n", record.Payload.Institution)
	}
	fmt.Printf("  photos:    %d\n", record.Payload.PhotoCount)
	fmt.Printf("  submitted: %s\n", record.Payload.SubmittedAt.Format("2006-01-02 15:04"))
}

// Command dryrun runs exam room and invigilator allocation over a JSON file,
// entirely in memory, and prints the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/bytedance/sonic"

	"exam_allocation_backend/internals/configs"
	"exam_allocation_backend/internals/features/allocation/dto"
	"exam_allocation_backend/internals/features/allocation/engine"
	"exam_allocation_backend/internals/features/allocation/memstore"
	"exam_allocation_backend/internals/features/allocation/service"
)

type report struct {
	Success    bool                        `json:"success"`
	Allocation *dto.ExamAllocationResponse `json:"allocation,omitempty"`
	Notices    []dto.NoticeResponse        `json:"notices,omitempty"`
	Failure    *engine.FailureResult       `json:"failure,omitempty"`
}

func main() {
	filePathPtr := flag.String("file", "", "Path to the input file")
	flag.Parse()
	if *filePathPtr == "" {
		log.Fatal("an input file must be specified")
	}

	if err := run(*filePathPtr, os.Stdout); err != nil {
		log.Printf("❌ %v", err)
		os.Exit(1)
	}
}

func run(file string, out io.Writer) error {
	input, err := InputFromJson(file)
	if err != nil {
		return err
	}

	settings := configs.DefaultAllocationSettings()
	if input.Timezone != "" {
		if _, err := time.LoadLocation(input.Timezone); err != nil {
			return fmt.Errorf("timezone: %w", err)
		}
		settings.Timezone = input.Timezone
	}
	settings.TxRetries = 0
	var tb engine.TieBreaker = engine.DefaultTieBreaker()
	if input.Seed != nil {
		tb = engine.NewRandomTieBreaker(*input.Seed)
	}

	store := memstore.New()
	req, err := input.Load(store)
	if err != nil {
		return err
	}

	svc := service.NewExamAllocationService(store, settings, discardNotifier{}, tb)
	res, runErr := svc.CreateExam(context.Background(), req)

	rep := report{Success: runErr == nil}
	if runErr != nil {
		f := engine.Failure(runErr)
		rep.Failure = &f
	} else {
		resp := res.Response()
		rep.Allocation = &resp
		rep.Notices = dto.FromNotices(res.Notices)
	}

	raw, err := sonic.ConfigStd.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out, string(raw)); err != nil {
		return err
	}
	return runErr
}

// notices are printed in the report, not delivered
type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, []engine.Notice) error { return nil }

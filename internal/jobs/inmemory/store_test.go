package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/dvloznov/sales-insights/internal/jobs"
)

func TestStore_SaveAndGet(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	job := &jobs.RefreshJob{
		JobID:     "job-1",
		Status:    jobs.JobStatusPending,
		CreatedAt: time.Now(),
	}
	if err := store.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}

	got, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if got.JobID != "job-1" || got.Status != jobs.JobStatusPending {
		t.Errorf("got %+v, want pending job-1", got)
	}

	// Mutating the returned copy must not touch the stored job.
	got.Status = jobs.JobStatusFailed
	again, _ := store.GetJob(ctx, "job-1")
	if again.Status != jobs.JobStatusPending {
		t.Errorf("stored job mutated through a returned copy: %+v", again)
	}
}

func TestStore_SaveRequiresID(t *testing.T) {
	store := NewStore()
	if err := store.SaveJob(context.Background(), &jobs.RefreshJob{}); err == nil {
		t.Error("SaveJob with empty ID = nil error, want failure")
	}
}

func TestStore_GetMissingJob(t *testing.T) {
	store := NewStore()
	if _, err := store.GetJob(context.Background(), "nope"); err == nil {
		t.Error("GetJob(nope) = nil error, want not found")
	}
}

func TestStore_ListJobsNewestFirstWithFilter(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	base := time.Now()

	seed := []*jobs.RefreshJob{
		{JobID: "old", Status: jobs.JobStatusCompleted, CreatedAt: base.Add(-2 * time.Hour)},
		{JobID: "mid", Status: jobs.JobStatusFailed, CreatedAt: base.Add(-time.Hour)},
		{JobID: "new", Status: jobs.JobStatusCompleted, CreatedAt: base},
	}
	for _, j := range seed {
		if err := store.SaveJob(ctx, j); err != nil {
			t.Fatalf("SaveJob(%s) failed: %v", j.JobID, err)
		}
	}

	all, err := store.ListJobs(ctx, jobs.JobFilter{})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(all) != 3 || all[0].JobID != "new" || all[2].JobID != "old" {
		t.Errorf("order = %v, want newest first", jobIDs(all))
	}

	completed, err := store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusCompleted})
	if err != nil {
		t.Fatalf("ListJobs(completed) failed: %v", err)
	}
	if len(completed) != 2 {
		t.Errorf("completed jobs = %v, want 2", jobIDs(completed))
	}

	paged, err := store.ListJobs(ctx, jobs.JobFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("ListJobs(paged) failed: %v", err)
	}
	if len(paged) != 1 || paged[0].JobID != "mid" {
		t.Errorf("page = %v, want [mid]", jobIDs(paged))
	}

	empty, err := store.ListJobs(ctx, jobs.JobFilter{Offset: 10})
	if err != nil {
		t.Fatalf("ListJobs(past end) failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("past-end page = %v, want empty", jobIDs(empty))
	}
}

func TestStore_UpdateJobStatus(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_ = store.SaveJob(ctx, &jobs.RefreshJob{JobID: "job-1", Status: jobs.JobStatusRunning, CreatedAt: time.Now()})

	if err := store.UpdateJobStatus(ctx, "job-1", jobs.JobStatusFailed, "source unavailable"); err != nil {
		t.Fatalf("UpdateJobStatus failed: %v", err)
	}

	got, _ := store.GetJob(ctx, "job-1")
	if got.Status != jobs.JobStatusFailed || got.Error != "source unavailable" {
		t.Errorf("job = %+v, want failed with error message", got)
	}

	if err := store.UpdateJobStatus(ctx, "nope", jobs.JobStatusFailed, ""); err == nil {
		t.Error("UpdateJobStatus(nope) = nil error, want not found")
	}
}

func jobIDs(list []*jobs.RefreshJob) []string {
	ids := make([]string, len(list))
	for i, j := range list {
		ids[i] = j.JobID
	}
	return ids
}

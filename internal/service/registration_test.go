package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/eventra-hq/eventra/internal/model"
	"github.com/eventra-hq/eventra/internal/repository"
)

func TestEnrollKeepsCounterInSyncWithRegistrations(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	organizer := env.seedUser(t, model.RoleOrganizer)
	event := env.seedEvent(t, organizer.ID, 3)

	p1 := env.seedUser(t, model.RoleParticipant)
	p2 := env.seedUser(t, model.RoleParticipant)

	if _, err := env.regs.Enroll(ctx, identityOf(p1), event.ID); err != nil {
		t.Fatalf("enroll p1: %v", err)
	}
	if _, err := env.regs.Enroll(ctx, identityOf(p2), event.ID); err != nil {
		t.Fatalf("enroll p2: %v", err)
	}

	counter, actual := env.occupancy(t, event.ID)
	if counter != 2 || actual != 2 {
		t.Fatalf("occupancy = (%d counter, %d actual), want (2, 2)", counter, actual)
	}
}

func TestEnrollSamePairTwiceConflicts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	organizer := env.seedUser(t, model.RoleOrganizer)
	event := env.seedEvent(t, organizer.ID, 5)
	participant := env.seedUser(t, model.RoleParticipant)

	if _, err := env.regs.Enroll(ctx, identityOf(participant), event.ID); err != nil {
		t.Fatalf("first enroll: %v", err)
	}
	if _, err := env.regs.Enroll(ctx, identityOf(participant), event.ID); !errors.Is(err, repository.ErrAlreadyRegistered) {
		t.Fatalf("second enroll err = %v, want ErrAlreadyRegistered", err)
	}

	counter, actual := env.occupancy(t, event.ID)
	if counter != 1 || actual != 1 {
		t.Fatalf("occupancy = (%d, %d), want (1, 1)", counter, actual)
	}
}

func TestEnrollFullEventConflictsWithoutStateChange(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	organizer := env.seedUser(t, model.RoleOrganizer)
	event := env.seedEvent(t, organizer.ID, 1)

	first := env.seedUser(t, model.RoleParticipant)
	second := env.seedUser(t, model.RoleParticipant)

	if _, err := env.regs.Enroll(ctx, identityOf(first), event.ID); err != nil {
		t.Fatalf("enroll first: %v", err)
	}
	if _, err := env.regs.Enroll(ctx, identityOf(second), event.ID); !errors.Is(err, repository.ErrEventFull) {
		t.Fatalf("enroll into full event err = %v, want ErrEventFull", err)
	}

	counter, actual := env.occupancy(t, event.ID)
	if counter != 1 || actual != 1 {
		t.Fatalf("occupancy = (%d, %d), want (1, 1)", counter, actual)
	}
}

func TestEnrollUnknownEventNotFound(t *testing.T) {
	env := newTestEnv()
	participant := env.seedUser(t, model.RoleParticipant)

	_, err := env.regs.Enroll(context.Background(), identityOf(participant), "no-such-event")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestEnrollRequiresParticipantRole(t *testing.T) {
	env := newTestEnv()
	organizer := env.seedUser(t, model.RoleOrganizer)
	event := env.seedEvent(t, organizer.ID, 5)

	_, err := env.regs.Enroll(context.Background(), identityOf(organizer), event.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestConcurrentEnrollNeverOvershootsCapacity(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	organizer := env.seedUser(t, model.RoleOrganizer)
	event := env.seedEvent(t, organizer.ID, 4)

	// Fill all but one slot, then race 16 participants for the last one.
	for i := 0; i < 3; i++ {
		p := env.seedUser(t, model.RoleParticipant)
		if _, err := env.regs.Enroll(ctx, identityOf(p), event.ID); err != nil {
			t.Fatalf("pre-fill enroll: %v", err)
		}
	}

	const contenders = 16
	results := make(chan error, contenders)
	var g errgroup.Group
	for i := 0; i < contenders; i++ {
		p := env.seedUser(t, model.RoleParticipant)
		g.Go(func() error {
			_, err := env.regs.Enroll(ctx, identityOf(p), event.ID)
			results <- err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}
	close(results)

	var succeeded, full int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, repository.ErrEventFull):
			full++
		default:
			t.Fatalf("unexpected enroll error: %v", err)
		}
	}

	if succeeded != 1 || full != contenders-1 {
		t.Fatalf("got %d successes and %d full-event conflicts, want 1 and %d", succeeded, full, contenders-1)
	}
	counter, actual := env.occupancy(t, event.ID)
	if counter != event.TotalSlots || actual != event.TotalSlots {
		t.Fatalf("occupancy = (%d, %d), want (%d, %d)", counter, actual, event.TotalSlots, event.TotalSlots)
	}
}

func TestCancelReleasesSlot(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	organizer := env.seedUser(t, model.RoleOrganizer)
	event := env.seedEvent(t, organizer.ID, 2)
	participant := env.seedUser(t, model.RoleParticipant)

	reg, err := env.regs.Enroll(ctx, identityOf(participant), event.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}

	if err := env.regs.Cancel(ctx, identityOf(participant), reg.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	counter, actual := env.occupancy(t, event.ID)
	if counter != 0 || actual != 0 {
		t.Fatalf("occupancy after cancel = (%d, %d), want (0, 0)", counter, actual)
	}
}

func TestCancelUnknownRegistrationNotFound(t *testing.T) {
	env := newTestEnv()
	admin := env.seedUser(t, model.RoleAdmin)

	err := env.regs.Cancel(context.Background(), identityOf(admin), "no-such-registration")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCancelDecrementClampsAtZero(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	organizer := env.seedUser(t, model.RoleOrganizer)
	event := env.seedEvent(t, organizer.ID, 2)
	participant := env.seedUser(t, model.RoleParticipant)

	reg, err := env.regs.Enroll(ctx, identityOf(participant), event.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}

	// Force the counter out of sync, as an external writer might.
	env.store.mu.Lock()
	env.store.events[event.ID].OccupiedSlots = 0
	env.store.mu.Unlock()

	if err := env.regs.Cancel(ctx, identityOf(participant), reg.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	counter, _ := env.occupancy(t, event.ID)
	if counter != 0 {
		t.Fatalf("occupied_slots = %d, want 0 (clamped)", counter)
	}
}

func TestCancelForeignRegistrationForbidden(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	organizer := env.seedUser(t, model.RoleOrganizer)
	event := env.seedEvent(t, organizer.ID, 2)
	owner := env.seedUser(t, model.RoleParticipant)
	other := env.seedUser(t, model.RoleParticipant)

	reg, err := env.regs.Enroll(ctx, identityOf(owner), event.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}

	if err := env.regs.Cancel(ctx, identityOf(other), reg.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("cancel by non-owner err = %v, want ErrForbidden", err)
	}

	// Admin bypasses ownership.
	admin := env.seedUser(t, model.RoleAdmin)
	if err := env.regs.Cancel(ctx, identityOf(admin), reg.ID); err != nil {
		t.Fatalf("cancel by admin: %v", err)
	}
}

func TestListRegistrationsIsAdminOnly(t *testing.T) {
	env := newTestEnv()
	participant := env.seedUser(t, model.RoleParticipant)

	if _, err := env.regs.List(context.Background(), identityOf(participant)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

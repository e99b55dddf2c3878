package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/event-service/internal/events"
	"github.com/spec-kit/event-service/internal/repository"
	"github.com/spec-kit/event-service/internal/service"
)

func TestEventService_CreateValidatesRequiredFields(t *testing.T) {
	f := newFixture(t, false)
	owner := f.user(t, "owner")

	_, err := f.events.Create(context.Background(), owner.ID, service.EventInput{Date: date(1)})
	requireStatus(t, err, http.StatusBadRequest, "name and date are required")

	_, err = f.events.Create(context.Background(), owner.ID, service.EventInput{Name: "Meetup"})
	requireStatus(t, err, http.StatusBadRequest, "name and date are required")

	event := f.event(t, owner.ID, "Meetup", date(1))
	require.Equal(t, owner.ID, event.OwnerID)
	require.NotZero(t, event.ID)
	require.Len(t, f.published, 1)
	require.Equal(t, events.EventCreated, f.published[0].Type)
}

func TestEventService_ListFilterPrecedence(t *testing.T) {
	f := newFixture(t, false)
	owner := f.user(t, "owner")
	ctx := context.Background()

	f.event(t, owner.ID, "Go Meetup", date(1))
	_, err := f.events.Create(ctx, owner.ID, service.EventInput{Name: "Rust Night", Date: date(10), Location: "Paris"})
	require.NoError(t, err)
	f.event(t, owner.ID, "Go Conference", date(20))

	all, err := f.events.List(ctx, service.EventFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "Go Conference", all[0].Name, "default ordering is newest date first")

	found, err := f.events.List(ctx, service.EventFilter{Search: "go", Location: "paris"})
	require.NoError(t, err)
	require.Len(t, found, 2, "search wins over location")

	inParis, err := f.events.List(ctx, service.EventFilter{Location: "paris"})
	require.NoError(t, err)
	require.Len(t, inParis, 1)
	require.Equal(t, "Rust Night", inParis[0].Name)

	from, to := date(5), date(25)
	ranged, err := f.events.List(ctx, service.EventFilter{StartDate: &from, EndDate: &to})
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	require.Equal(t, "Rust Night", ranged[0].Name, "range is ordered by ascending date")

	onlyStart, err := f.events.List(ctx, service.EventFilter{StartDate: &from})
	require.NoError(t, err)
	require.Len(t, onlyStart, 3, "half-open range falls back to all events")
}

func TestEventService_GetAndListByOwner(t *testing.T) {
	f := newFixture(t, false)
	owner := f.user(t, "owner")
	other := f.user(t, "other")
	event := f.event(t, owner.ID, "Meetup", date(1))
	f.event(t, other.ID, "Other", date(2))

	got, err := f.events.Get(context.Background(), event.ID)
	require.NoError(t, err)
	require.Equal(t, "Meetup", got.Name)

	_, err = f.events.Get(context.Background(), 404)
	requireStatus(t, err, http.StatusNotFound, "event not found")

	mine, err := f.events.ListByOwner(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
}

func TestEventService_UpdateDistinguishesMissingFromForbidden(t *testing.T) {
	f := newFixture(t, false)
	owner := f.user(t, "owner")
	stranger := f.user(t, "stranger")
	event := f.event(t, owner.ID, "Meetup", date(1))
	ctx := context.Background()

	name := "Renamed"
	_, err := f.events.Update(ctx, owner.ID, 999, repository.EventPatch{Name: &name})
	requireStatus(t, err, http.StatusNotFound, "event not found")

	_, err = f.events.Update(ctx, stranger.ID, event.ID, repository.EventPatch{Name: &name})
	requireStatus(t, err, http.StatusForbidden, "not authorized to update this event")

	newDate := date(3)
	updated, err := f.events.Update(ctx, owner.ID, event.ID, repository.EventPatch{Name: &name, Date: &newDate})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
	require.Equal(t, "Berlin", updated.Location, "fields absent from the patch are kept")
	require.True(t, updated.Date.Equal(newDate))
}

func TestEventService_Delete(t *testing.T) {
	f := newFixture(t, false)
	owner := f.user(t, "owner")
	stranger := f.user(t, "stranger")
	event := f.event(t, owner.ID, "Meetup", date(1))
	ctx := context.Background()

	_, err := f.events.Delete(ctx, stranger.ID, event.ID)
	requireStatus(t, err, http.StatusForbidden, "not authorized to delete this event")

	deleted, err := f.events.Delete(ctx, owner.ID, event.ID)
	require.NoError(t, err)
	require.Equal(t, event.ID, deleted.ID)

	_, err = f.events.Delete(ctx, owner.ID, event.ID)
	requireStatus(t, err, http.StatusNotFound, "event not found")

	require.Equal(t, events.EventDeleted, f.published[len(f.published)-1].Type)
}

func TestEventService_PublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t, false)
	owner := f.user(t, "owner")
	f.dispatcher.Subscribe(events.EventCreated, func(context.Context, events.Event) error {
		return context.DeadlineExceeded
	})

	_, err := f.events.Create(context.Background(), owner.ID, service.EventInput{Name: "Meetup", Date: time.Now()})
	require.NoError(t, err)
}

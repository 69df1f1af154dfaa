package usecase

import (
	"context"
	"fmt"
	"time"

	"go-medical-booking/internal/converter"
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/apperror"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var ErrNoAvailability = apperror.New(apperror.KindNotFound, "no free slot in the requested range")

// maxParallelDayQueries bounds concurrent per-day store reads in NextAvailable
const maxParallelDayQueries = 8

// maxLookaheadDays bounds the range NextAvailable scans
const maxLookaheadDays = 90

// AvailabilityQuery answers which slots of a doctor are still free. Reads take
// no lock; a slot shown free may be taken before Create runs, which Create rejects.
type AvailabilityQuery interface {
	AvailableSlots(ctx context.Context, req *dto.AvailabilityRequest) (*dto.AvailabilityResponse, error)
	NextAvailable(ctx context.Context, req *dto.NextAvailabilityRequest) (*dto.AvailabilityResponse, error)
}

type availabilityQuery struct {
	log      *logrus.Logger
	store    repository.AppointmentStore
	users    repository.UserDirectory
	calendar *AvailabilityCalendar
}

func NewAvailabilityQuery(
	log *logrus.Logger,
	store repository.AppointmentStore,
	users repository.UserDirectory,
	calendar *AvailabilityCalendar,
) AvailabilityQuery {
	return &availabilityQuery{
		log:      log,
		store:    store,
		users:    users,
		calendar: calendar,
	}
}

// AvailableSlots returns the doctor's template for the date minus booked times
func (u *availabilityQuery) AvailableSlots(ctx context.Context, req *dto.AvailabilityRequest) (*dto.AvailabilityResponse, error) {
	date, err := u.calendar.ParseDate(req.Date)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "date must use YYYY-MM-DD", err)
	}

	doctor, err := u.resolveDoctor(ctx, req)
	if err != nil {
		return nil, err
	}

	return u.slotsOn(ctx, doctor, date)
}

// NextAvailable scans [from, from+days) and returns the first date with a free slot.
// Days are queried concurrently; the earliest match wins.
func (u *availabilityQuery) NextAvailable(ctx context.Context, req *dto.NextAvailabilityRequest) (*dto.AvailabilityResponse, error) {
	from, err := u.calendar.ParseDate(req.From)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "from must use YYYY-MM-DD", err)
	}
	if req.Days <= 0 || req.Days > maxLookaheadDays {
		return nil, apperror.New(apperror.KindValidation, fmt.Sprintf("days must be between 1 and %d", maxLookaheadDays))
	}

	doctor, err := u.resolveDoctor(ctx, &dto.AvailabilityRequest{DoctorID: req.DoctorID})
	if err != nil {
		return nil, err
	}

	results := make([]*dto.AvailabilityResponse, req.Days)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDayQueries)

	for i := 0; i < req.Days; i++ {
		day := from.AddDate(0, 0, i)
		if len(u.calendar.SlotsFor(doctor, day)) == 0 {
			continue
		}
		g.Go(func() error {
			resp, err := u.slotsOn(gctx, doctor, day)
			if err != nil {
				return err
			}
			results[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, resp := range results {
		if resp != nil && len(resp.AvailableSlots) > 0 {
			return resp, nil
		}
	}
	return nil, ErrNoAvailability
}

func (u *availabilityQuery) resolveDoctor(ctx context.Context, req *dto.AvailabilityRequest) (*entity.Doctor, error) {
	doctor, err := u.users.ResolveDoctor(ctx, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to resolve doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	return doctor, nil
}

func (u *availabilityQuery) slotsOn(ctx context.Context, doctor *entity.Doctor, date time.Time) (*dto.AvailabilityResponse, error) {
	offered := u.calendar.SlotsFor(doctor, date)

	booked, err := u.store.BookedTimes(ctx, doctor.ID, date)
	if err != nil {
		u.log.Warnf("Failed to load booked times for doctor %s on %s: %+v", doctor.ID, date.Format(entity.DateLayout), err)
		return nil, err
	}

	taken := make(map[entity.TimeSlot]struct{}, len(booked))
	for _, slot := range booked {
		taken[slot] = struct{}{}
	}

	free := make([]entity.TimeSlot, 0, len(offered))
	for _, slot := range offered {
		if _, ok := taken[slot]; !ok {
			free = append(free, slot)
		}
	}

	return converter.AvailabilityToResponse(doctor.ID, date, free, len(offered), len(booked)), nil
}

package usecase

import (
	"context"

	"go-medical-booking/internal/converter"
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/apperror"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const defaultDoctorPageLimit = 10

type DoctorDirectory interface {
	Search(ctx context.Context, req *dto.SearchDoctorsRequest) (*dto.DoctorListResponse, error)
}

type doctorDirectory struct {
	log   *logrus.Logger
	users repository.UserDirectory
}

func NewDoctorDirectory(log *logrus.Logger, users repository.UserDirectory) DoctorDirectory {
	return &doctorDirectory{
		log:   log,
		users: users,
	}
}

// Search returns a page of doctors. Without a sort field the most experienced come first.
func (u *doctorDirectory) Search(ctx context.Context, req *dto.SearchDoctorsRequest) (*dto.DoctorListResponse, error) {
	filter := &entity.DoctorFilter{
		Specialization: req.Specialization,
		Location:       req.Location,
		Search:         req.Search,
		SortBy:         req.SortBy,
		Page:           req.Page,
		Limit:          req.Limit,
	}
	if filter.SortBy == "" {
		filter.SortBy = entity.DoctorSortExperience
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultDoctorPageLimit
	}

	if req.MaxFee != "" {
		maxFee, err := decimal.NewFromString(req.MaxFee)
		if err != nil {
			return nil, apperror.Wrap(apperror.KindValidation, "max fee must be a number", err)
		}
		filter.MaxFee = &maxFee
	}

	doctors, total, err := u.users.SearchDoctors(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to search doctors: %+v", err)
		return nil, err
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(doctors),
		Total:   total,
		Page:    filter.Page,
		Limit:   filter.Limit,
	}, nil
}

package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// activeSlotIndex is the partial unique index guarding (doctor_id, appointment_date,
// appointment_time) among non-cancelled appointments.
const activeSlotIndex = "uq_appointments_active_slot"

// isUniqueViolation checks if the error is a PostgreSQL unique violation
// on the specified constraint
func isUniqueViolation(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}

package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Значения метки result.
const (
	resultCreated   = "created"
	resultForbidden = "forbidden"
	resultDuplicate = "duplicate"
	resultNoUser    = "user_not_found"
	resultUpload    = "upload_failed"
	resultError     = "error"
)

var profilesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "profiles_created_total",
	Help: "Profile creation attempts by outcome.",
}, []string{"result"})

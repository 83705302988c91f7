package geometry

import (
	"github.com/photometric/go-mmlt/pkg/core"
	"github.com/photometric/go-mmlt/pkg/material"
)

// Shape interface for objects that can be hit by rays
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)
}

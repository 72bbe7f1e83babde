// Package sim implements the tick-driven vehicle entity system: a columnar
// arena of vehicle components advanced each tick by a fixed system schedule.
package sim

// Vehicles is a columnar arena: every slice is indexed by the same dense
// entity id, and removal returns an id to the free-list instead of shrinking
// the slices. The baseline scheduler never removes a vehicle mid-run, but
// the arena supports it so the shape matches how entity stores are built
// when churn is expected.
type Vehicles struct {
	ids         []string
	edgeIndex   []int
	distanceM   []float64
	lon         []float32
	lat         []float32
	velX        []float32
	velY        []float32
	targetSpeed []float32
	alive       []bool
	free        []int
}

// NewVehicles returns an empty arena.
func NewVehicles() *Vehicles {
	return &Vehicles{}
}

// Spawn allocates a new entity, reusing a freed slot when one is available.
func (v *Vehicles) Spawn(id string, edgeIndex int, distanceM float64, targetSpeed float32) int {
	if n := len(v.free); n > 0 {
		idx := v.free[n-1]
		v.free = v.free[:n-1]
		v.ids[idx] = id
		v.edgeIndex[idx] = edgeIndex
		v.distanceM[idx] = distanceM
		v.lon[idx] = 0
		v.lat[idx] = 0
		v.velX[idx] = 0
		v.velY[idx] = 0
		v.targetSpeed[idx] = targetSpeed
		v.alive[idx] = true
		return idx
	}

	v.ids = append(v.ids, id)
	v.edgeIndex = append(v.edgeIndex, edgeIndex)
	v.distanceM = append(v.distanceM, distanceM)
	v.lon = append(v.lon, 0)
	v.lat = append(v.lat, 0)
	v.velX = append(v.velX, 0)
	v.velY = append(v.velY, 0)
	v.targetSpeed = append(v.targetSpeed, targetSpeed)
	v.alive = append(v.alive, true)
	return len(v.ids) - 1
}

// Despawn returns an entity's slot to the free-list. Its row is ignored by
// every system until a future Spawn reuses the slot.
func (v *Vehicles) Despawn(idx int) {
	if idx < 0 || idx >= len(v.alive) || !v.alive[idx] {
		return
	}
	v.alive[idx] = false
	v.free = append(v.free, idx)
}

// Len returns the arena's slot count, including freed slots.
func (v *Vehicles) Len() int { return len(v.ids) }

// Alive reports whether slot idx holds a live entity.
func (v *Vehicles) Alive(idx int) bool { return idx < len(v.alive) && v.alive[idx] }

// ID returns the vehicle id at idx.
func (v *Vehicles) ID(idx int) string { return v.ids[idx] }

// GraphPosition returns the (edge_index, distance_m) pair at idx.
func (v *Vehicles) GraphPosition(idx int) (int, float64) { return v.edgeIndex[idx], v.distanceM[idx] }

// SetGraphPosition updates the (edge_index, distance_m) pair at idx.
func (v *Vehicles) SetGraphPosition(idx int, edgeIndex int, distanceM float64) {
	v.edgeIndex[idx] = edgeIndex
	v.distanceM[idx] = distanceM
}

// Position returns the mirrored visual position at idx.
func (v *Vehicles) Position(idx int) (lon, lat float32) { return v.lon[idx], v.lat[idx] }

// SetPosition updates the mirrored visual position at idx.
func (v *Vehicles) SetPosition(idx int, lon, lat float32) {
	v.lon[idx] = lon
	v.lat[idx] = lat
}

// TargetSpeed returns the target speed (m/s) at idx.
func (v *Vehicles) TargetSpeed(idx int) float32 { return v.targetSpeed[idx] }

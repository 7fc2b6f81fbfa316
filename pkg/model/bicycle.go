package model

type BicycleStatus string

const (
	BicycleNew             BicycleStatus = "NOVA"
	BicycleAvailable       BicycleStatus = "DISPONIVEL"
	BicycleInUse           BicycleStatus = "EM_USO"
	BicycleRetired         BicycleStatus = "APOSENTADA"
	BicycleRepairRequested BicycleStatus = "REPARO_SOLICITADO"
	BicycleInRepair        BicycleStatus = "EM_REPARO"
)

func (s BicycleStatus) Valid() bool {
	switch s {
	case BicycleNew, BicycleAvailable, BicycleInUse, BicycleRetired, BicycleRepairRequested, BicycleInRepair:
		return true
	default:
		return false
	}
}

func (s BicycleStatus) String() string {
	return string(s)
}

// Join is a technician putting a new or repaired bicycle into service.
func (s BicycleStatus) Join() (BicycleStatus, error) {
	switch s {
	case BicycleNew, BicycleInRepair:
		return BicycleAvailable, nil
	case BicycleAvailable, BicycleInUse, BicycleRetired, BicycleRepairRequested:
		return s, invalidTransition("bicycle", s, "join the network")
	default:
		return s, invalidTransition("bicycle", s, "join the network")
	}
}

// Dock is the bicycle being locked into a lock. Any known status ends up
// DISPONIVEL.
func (s BicycleStatus) Dock() (BicycleStatus, error) {
	switch s {
	case BicycleNew, BicycleAvailable, BicycleInUse, BicycleRetired, BicycleRepairRequested, BicycleInRepair:
		return BicycleAvailable, nil
	default:
		return s, invalidTransition("bicycle", s, "be docked")
	}
}

// Release is the bicycle leaving its lock with a cyclist.
func (s BicycleStatus) Release() (BicycleStatus, error) {
	switch s {
	case BicycleNew, BicycleAvailable, BicycleInUse, BicycleRetired, BicycleRepairRequested, BicycleInRepair:
		return BicycleInUse, nil
	default:
		return s, invalidTransition("bicycle", s, "be released")
	}
}

// Withdraw takes the bicycle out of the network into target.
func (s BicycleStatus) Withdraw(target BicycleStatus) (BicycleStatus, error) {
	if !target.IsWithdrawTarget() {
		return s, invalidTransition("bicycle", s, "be withdrawn to "+string(target))
	}
	switch s {
	case BicycleNew, BicycleAvailable, BicycleInUse, BicycleRetired, BicycleRepairRequested, BicycleInRepair:
		return target, nil
	default:
		return s, invalidTransition("bicycle", s, "be withdrawn")
	}
}

// IsWithdrawTarget reports whether a withdrawal may leave the bicycle in s.
func (s BicycleStatus) IsWithdrawTarget() bool {
	switch s {
	case BicycleRetired, BicycleInRepair:
		return true
	case BicycleNew, BicycleAvailable, BicycleInUse, BicycleRepairRequested:
		return false
	default:
		return false
	}
}

type Bicycle struct {
	ID     int64         `json:"id" bson:"_id"`
	Brand  string        `json:"marca" bson:"marca" validate:"required,min=1,max=100"`
	Model  string        `json:"modelo" bson:"modelo" validate:"required,min=1,max=100"`
	Year   string        `json:"ano" bson:"ano" validate:"required,year"`
	Number int64         `json:"numero" bson:"numero" validate:"required,gt=0"`
	Status BicycleStatus `json:"status" bson:"status" validate:"omitempty,bicycle_status"`
}

type BicycleUpdate struct {
	Brand  string        `json:"marca,omitempty" validate:"omitempty,min=1,max=100"`
	Model  string        `json:"modelo,omitempty" validate:"omitempty,min=1,max=100"`
	Year   string        `json:"ano,omitempty" validate:"omitempty,year"`
	Number *int64        `json:"numero,omitempty" validate:"omitempty,gt=0"`
	Status BicycleStatus `json:"status,omitempty" validate:"omitempty,bicycle_status"`
}

// JoinBicycleRequest docks a bicycle into a free lock.
type JoinBicycleRequest struct {
	BicycleID    int64 `json:"idBicicleta" validate:"required,gt=0"`
	LockID       int64 `json:"idTranca" validate:"required,gt=0"`
	TechnicianID int64 `json:"idFuncionario" validate:"required,gt=0"`
}

// WithdrawBicycleRequest pulls a bicycle out of the network for repair or
// retirement.
type WithdrawBicycleRequest struct {
	BicycleID    int64         `json:"idBicicleta" validate:"required,gt=0"`
	LockID       int64         `json:"idTranca" validate:"required,gt=0"`
	TechnicianID int64         `json:"idFuncionario" validate:"required,gt=0"`
	Target       BicycleStatus `json:"statusAcaoReparador" validate:"required,bicycle_status"`
}

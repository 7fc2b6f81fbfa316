package model

type LockStatus string

const (
	LockNew             LockStatus = "NOVA"
	LockFree            LockStatus = "LIVRE"
	LockOccupied        LockStatus = "OCUPADA"
	LockRetired         LockStatus = "APOSENTADA"
	LockInRepair        LockStatus = "EM_REPARO"
	LockRepairRequested LockStatus = "REPARO_SOLICITADO"
)

func (s LockStatus) Valid() bool {
	switch s {
	case LockNew, LockFree, LockOccupied, LockRetired, LockInRepair, LockRepairRequested:
		return true
	default:
		return false
	}
}

func (s LockStatus) String() string {
	return string(s)
}

// Join attaches a new or repaired lock to a totem.
func (s LockStatus) Join() (LockStatus, error) {
	switch s {
	case LockNew, LockInRepair:
		return LockFree, nil
	case LockFree, LockOccupied, LockRetired, LockRepairRequested:
		return s, invalidTransition("lock", s, "join the network")
	default:
		return s, invalidTransition("lock", s, "join the network")
	}
}

// Receive is a technician docking a bicycle into a free lock.
func (s LockStatus) Receive() (LockStatus, error) {
	switch s {
	case LockFree:
		return LockOccupied, nil
	case LockNew, LockOccupied, LockRetired, LockInRepair, LockRepairRequested:
		return s, invalidTransition("lock", s, "receive a bicycle")
	default:
		return s, invalidTransition("lock", s, "receive a bicycle")
	}
}

// Close is the lock command. Only a lock that is already closed refuses it.
func (s LockStatus) Close() (LockStatus, error) {
	switch s {
	case LockNew, LockFree, LockRetired, LockInRepair, LockRepairRequested:
		return LockOccupied, nil
	case LockOccupied:
		return s, invalidTransition("lock", s, "be locked")
	default:
		return s, invalidTransition("lock", s, "be locked")
	}
}

// Open is the unlock command, also used when a docked bicycle is withdrawn.
func (s LockStatus) Open() (LockStatus, error) {
	switch s {
	case LockNew, LockFree, LockOccupied, LockRetired, LockInRepair, LockRepairRequested:
		return LockFree, nil
	default:
		return s, invalidTransition("lock", s, "be unlocked")
	}
}

// Withdraw detaches the lock from its totem into target.
func (s LockStatus) Withdraw(target LockStatus) (LockStatus, error) {
	if !target.IsWithdrawTarget() {
		return s, invalidTransition("lock", s, "be withdrawn to "+string(target))
	}
	switch s {
	case LockNew, LockFree, LockOccupied, LockRetired, LockInRepair, LockRepairRequested:
		return target, nil
	default:
		return s, invalidTransition("lock", s, "be withdrawn")
	}
}

func (s LockStatus) IsWithdrawTarget() bool {
	switch s {
	case LockRetired, LockInRepair:
		return true
	case LockNew, LockFree, LockOccupied, LockRepairRequested:
		return false
	default:
		return false
	}
}

type Lock struct {
	ID              int64      `json:"id" bson:"_id"`
	Number          int64      `json:"numero" bson:"numero" validate:"required,gt=0"`
	Location        string     `json:"localizacao" bson:"localizacao" validate:"required,min=1,max=200"`
	ManufactureYear string     `json:"anoDeFabricacao" bson:"anoDeFabricacao" validate:"required,year"`
	Model           string     `json:"modelo" bson:"modelo" validate:"required,min=1,max=100"`
	Status          LockStatus `json:"status" bson:"status" validate:"omitempty,lock_status"`
	BicycleID       *int64     `json:"bicicleta,omitempty" bson:"bicicleta,omitempty"`
	TotemID         *int64     `json:"totem,omitempty" bson:"totem,omitempty"`
}

// HasBicycle reports whether a bicycle is docked here.
func (l *Lock) HasBicycle() bool {
	return l.BicycleID != nil
}

// Holds reports whether the given bicycle is the one docked here.
func (l *Lock) Holds(bicycleID int64) bool {
	return l.BicycleID != nil && *l.BicycleID == bicycleID
}

func (l *Lock) AttachedTo(totemID int64) bool {
	return l.TotemID != nil && *l.TotemID == totemID
}

type LockUpdate struct {
	Number          *int64     `json:"numero,omitempty" validate:"omitempty,gt=0"`
	Location        string     `json:"localizacao,omitempty" validate:"omitempty,min=1,max=200"`
	ManufactureYear string     `json:"anoDeFabricacao,omitempty" validate:"omitempty,year"`
	Model           string     `json:"modelo,omitempty" validate:"omitempty,min=1,max=100"`
	Status          LockStatus `json:"status,omitempty" validate:"omitempty,lock_status"`
}

// LockCommand is the body of the lock/unlock endpoints. The bicycle is
// optional.
type LockCommand struct {
	BicycleID *int64 `json:"bicicleta,omitempty" validate:"omitempty,gt=0"`
}

type JoinLockRequest struct {
	LockID       int64 `json:"idTranca" validate:"required,gt=0"`
	TotemID      int64 `json:"idTotem" validate:"required,gt=0"`
	TechnicianID int64 `json:"idFuncionario" validate:"required,gt=0"`
}

type WithdrawLockRequest struct {
	LockID       int64      `json:"idTranca" validate:"required,gt=0"`
	TotemID      int64      `json:"idTotem" validate:"required,gt=0"`
	TechnicianID int64      `json:"idFuncionario" validate:"required,gt=0"`
	Target       LockStatus `json:"statusAcaoReparador" validate:"required,lock_status"`
}

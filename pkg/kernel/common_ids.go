package kernel

// OperatorID identifies the person or system that triggered an operator action.
type OperatorID string

func NewOperatorID(id string) OperatorID { return OperatorID(id) }
func (o OperatorID) String() string      { return string(o) }
func (o OperatorID) IsEmpty() bool       { return string(o) == "" }

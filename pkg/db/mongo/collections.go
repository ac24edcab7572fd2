package mongo

const (
	OrganizationsCollection    = "Organizations"
	DeliveryTypesCollection    = "Delivery_types"
	WeeklyRulesCollection      = "Weekly_rules"
	WeeklyRuleGuardsCollection = "Weekly_rule_guards"
	OverridesCollection        = "Overrides"
	AppointmentsCollection     = "Appointments"
	AppointmentLocksCollection = "Appointment_locks"
)

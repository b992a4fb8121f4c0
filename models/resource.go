package models

// Destination table names. The records resource produces two tables
// (records + clients) from one fetch.
const (
	TableClients           = "clients"
	TableRecords           = "records"
	TableStaff             = "staff"
	TableSchedule          = "schedule"
	TableServiceCategories = "service_categories"
	TableServices          = "services"
	TableGoods             = "goods"
)

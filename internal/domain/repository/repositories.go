package repository

// Repositories agrupa los puertos de persistencia atados a una misma conexión o transacción.
type Repositories struct {
	Products    ProductRepository
	BOMs        BOMRepository
	Entries     StockEntryRepository
	Orders      ManufacturingOrderRepository
	WorkOrders  WorkOrderRepository
	WorkCenters WorkCenterRepository
}

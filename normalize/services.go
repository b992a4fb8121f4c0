package normalize

import "yclients_sync/models"

var serviceCategoryColumns = []Column{
	Col("id"),
	Col("title"),
	Col("weight"),
}

var serviceColumns = []Column{
	Col("id"),
	Col("title"),
	Col("category_id"),
	Col("price_min"),
	Col("price_max"),
	Col("discount"),
	Col("duration"),
	Col("weight"),
	Col("active"),
}

var goodsColumns = []Column{
	Col("id"),
	Col("title"),
	Col("category"),
	Col("unit"),
	Col("cost"),
	Col("price"),
}

func ServiceCategories(items []models.RawItem) *models.Table {
	return Project(items, serviceCategoryColumns)
}

func Services(items []models.RawItem) *models.Table {
	return Project(items, serviceColumns)
}

func Goods(items []models.RawItem) *models.Table {
	return Project(items, goodsColumns)
}

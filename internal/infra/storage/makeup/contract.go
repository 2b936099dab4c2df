package makeup

import (
	"github.com/m04kA/kesseki-furikae/pkg/dbmetrics"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

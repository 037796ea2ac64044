package internal

import (
	"net/http"
	"snapshotd/internal/controllers"
	"snapshotd/internal/providers"
)

const SnapshotPath = "/snapshot"

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get(SnapshotPath, http.HandlerFunc(apiController.GetSnapshot))
	routers.Post(SnapshotPath, http.HandlerFunc(apiController.SaveSnapshot))
	routers.Delete(SnapshotPath, http.HandlerFunc(apiController.PurgeSnapshot))
	return routers
}

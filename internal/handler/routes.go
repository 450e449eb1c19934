package handler

import "github.com/gin-gonic/gin"

// Handlers groups every HTTP handler mounted under the API prefix.
type Handlers struct {
	Members     *MemberHandler
	Enrollments *EnrollmentHandler
	Schedule    *ScheduleHandler
	Packages    *PackageHandler
	Rentals     *RentalHandler
	Reports     *ReportHandler
}

// Register mounts the API routes on group.
func Register(group *gin.RouterGroup, h Handlers) {
	members := group.Group("/members")
	members.POST("", h.Members.Register)
	members.GET("/:id", h.Members.Get)
	members.DELETE("/:id", h.Members.Delete)
	members.POST("/:id/funds", h.Members.AddFunds)
	members.GET("/:id/tier", h.Members.Tier)
	members.GET("/:id/transactions", h.Members.Transactions)
	members.POST("/:id/purchases", h.Enrollments.Purchase)
	members.GET("/:id/classes", h.Enrollments.MemberClasses)
	members.GET("/:id/schedule", h.Reports.MemberSchedule)
	members.GET("/:id/loans", h.Rentals.MemberLoans)

	group.POST("/courses", h.Schedule.CreateCourse)
	group.GET("/courses", h.Schedule.ListCourses)

	classes := group.Group("/classes")
	classes.POST("", h.Schedule.CreateClass)
	classes.POST("/conflicts", h.Schedule.CheckConflict)
	classes.DELETE("/:id", h.Schedule.DeleteClass)
	classes.POST("/:id/enrollments", h.Enrollments.Enroll)

	trainers := group.Group("/trainers")
	trainers.POST("", h.Schedule.CreateTrainer)
	trainers.GET("", h.Schedule.ListTrainers)
	trainers.GET("/:id/classes", h.Schedule.TrainerClasses)

	packages := group.Group("/packages")
	packages.POST("", h.Packages.Create)
	packages.GET("", h.Packages.List)
	packages.PATCH("/:name", h.Packages.UpdateCost)
	packages.DELETE("/:name", h.Packages.Delete)

	rentals := group.Group("/rentals")
	rentals.POST("/items", h.Rentals.CreateItem)
	rentals.GET("/items", h.Rentals.ListItems)
	rentals.POST("/checkout", h.Rentals.Checkout)
	rentals.POST("/return", h.Rentals.Return)

	reports := group.Group("/reports")
	reports.GET("/negative-balances", h.Reports.NegativeBalances)
	reports.GET("/trainer-hours", h.Reports.TrainerHours)
	reports.POST("/exports", h.Reports.RequestExport)
	reports.GET("/exports/:id", h.Reports.ExportStatus)
}

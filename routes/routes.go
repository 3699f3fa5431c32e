package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lender/app"
	"lender/controllers"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	s := controllers.GetSrv(a)
	memberCtl := controllers.NewMemberController(s)
	itemCtl := controllers.NewItemController(s)
	loanCtl := controllers.NewLoanController(s)
	dashCtl := controllers.NewDashboardController(s)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ------------------------------
	// Members
	// ------------------------------
	members := r.Group("/api/members")
	{
		members.POST("", memberCtl.CreateMember)
		members.GET("", memberCtl.ListMembers)
		members.GET("/:id", memberCtl.GetMember)
		members.PUT("/:id", memberCtl.UpdateMember)
		members.DELETE("/:id", memberCtl.DeleteMember)
		members.GET("/:id/borrowed", memberCtl.ListBorrowed)
	}

	// ------------------------------
	// Items
	// ------------------------------
	items := r.Group("/api/items")
	{
		items.POST("", itemCtl.CreateItem)
		items.GET("", itemCtl.ListItems) // ?available=&type=&owner=
		items.GET("/:id", itemCtl.GetItem)
		items.GET("/:id/availability", itemCtl.Availability)
		items.PUT("/:id", itemCtl.UpdateItem)
		items.DELETE("/:id", itemCtl.DeleteItem)
	}

	// ------------------------------
	// Loans
	// ------------------------------
	loans := r.Group("/api/loans")
	{
		loans.POST("/borrow", loanCtl.Borrow)
		loans.GET("", loanCtl.ListLoans) // ?status=&borrowerMemberId=&itemId=
		loans.GET("/history", loanCtl.History)
		loans.GET("/:id", loanCtl.GetLoan)
		loans.POST("/:id/return", loanCtl.Return)
	}

	// ------------------------------
	// Dashboard (read-only projections)
	// ------------------------------
	dash := r.Group("/api/dashboard")
	{
		dash.GET("/overdue", dashCtl.Overdue)
		dash.GET("/stats", dashCtl.Stats)
		dash.GET("/current-borrows", dashCtl.CurrentBorrows)
		dash.GET("/notifications", dashCtl.Notifications)
		dash.POST("/sweep", dashCtl.Sweep)
	}
}

package catalog

// DefaultModules is the starter catalog installed by Service.Seed. Template
// IDs are assigned at seed time.
var DefaultModules = []ModuleTemplate{
	{
		ID:          "design",
		Name:        "Diseño de Marca e Identidad Visual",
		Description: "Logotipo, identidad visual y señalética del proyecto",
		Icon:        "Palette",
		Color:       "pink",
		DefaultCost: 2500,
		Tasks: []TaskTemplate{
			{
				Title:       "Propuestas de Logotipo",
				Description: "Diseño y presentación de opciones de logotipo para el proyecto",
				Department:  "creativo",
				Checklist: []string{
					"Investigación de marca",
					"Bocetos iniciales",
					"Propuesta 1 - Versión principal",
					"Propuesta 2 - Versión alternativa",
					"Revisión con cliente",
					"Versión final aprobada",
				},
				Deliverables: []string{
					"Documento de propuestas de logo (PDF)",
					"Archivos vectoriales del logo final",
				},
			},
			{
				Title:       "Identidad Visual Completa",
				Description: "Desarrollo de la identidad visual: colores, tipografías, formatos",
				Department:  "creativo",
				Checklist: []string{
					"Definición de paleta de colores",
					"Selección de tipografías",
					"Diseño de formatos de difusión",
					"Manual de identidad visual",
				},
				Deliverables: []string{
					"Manual de Identidad Visual (PDF)",
					"Kit de recursos gráficos",
				},
			},
			{
				Title:       "Señalética de Edificios",
				Description: "Diseño de señalización para espacios físicos",
				Department:  "creativo",
				Checklist: []string{
					"Diseño de señalética de accesos",
					"Señalética de espacios formativos",
					"Señalética de espacios comunes",
					"Aprobación de diseños",
				},
				Deliverables: []string{
					"Planos de señalética",
					"Archivos para producción",
				},
			},
		},
	},
	{
		ID:          "tech",
		Name:        "Tecnología y Desarrollo",
		Description: "Portal web, landing pages, pagos, LMS y streaming",
		Icon:        "Code",
		Color:       "blue",
		DefaultCost: 6000,
		Tasks: []TaskTemplate{
			{
				Title:       "Portal Web Principal",
				Description: "Desarrollo e implantación del portal web del proyecto",
				Department:  "desarrollo",
				Checklist: []string{
					"Definición de arquitectura",
					"Diseño UX/UI",
					"Desarrollo frontend",
					"Desarrollo backend",
					"Integración de sistemas",
					"Testing y QA",
					"Despliegue en producción",
				},
				Deliverables: []string{
					"Portal web operativo",
					"Documentación técnica",
				},
			},
			{
				Title:       "Landing Pages y Páginas de Campaña",
				Description: "Creación de landing pages y squeeze pages para campañas",
				Department:  "desarrollo",
				Checklist: []string{
					"Diseño de landing pages",
					"Desarrollo de squeeze pages",
					"Configuración de formularios",
					"Integración con CRM",
				},
				Deliverables: []string{
					"Landing pages operativas",
					"Informe de conversión",
				},
			},
			{
				Title:       "Sistema de Gestión de Pagos",
				Description: "Integración de sistema de pagos y domiciliaciones",
				Department:  "desarrollo",
				Checklist: []string{
					"Selección de pasarela de pago",
					"Integración con plataforma",
					"Configuración de domiciliaciones",
					"Testing de transacciones",
				},
				Deliverables: []string{
					"Sistema de pagos operativo",
					"Manual de uso",
				},
			},
			{
				Title:       "Plataforma LMS",
				Description: "Personalización y parametrización de la plataforma LMS",
				Department:  "desarrollo",
				Checklist: []string{
					"Personalización visual",
					"Parametrización de cursos",
					"Integración con otros sistemas",
					"Configuración de roles y permisos",
				},
				Deliverables: []string{
					"LMS configurado",
					"Guía de administración",
				},
			},
			{
				Title:       "Sistemas de Streaming",
				Description: "Configuración de aulas de teleformación y streaming",
				Department:  "desarrollo",
				Checklist: []string{
					"Selección de plataforma de streaming",
					"Configuración de aulas virtuales",
					"Integración con LMS",
					"Pruebas de calidad de transmisión",
				},
				Deliverables: []string{
					"Sistema de streaming operativo",
					"Manual de uso para docentes",
				},
			},
		},
	},
	{
		ID:          "marketing",
		Name:        "Comunicación y Marketing",
		Description: "Campañas, contenidos, paid media y cuadros de mando",
		Icon:        "Megaphone",
		Color:       "purple",
		DefaultCost: 3500,
		Tasks: []TaskTemplate{
			{
				Title:       "Diseño de Campañas de Marketing",
				Description: "Planificación y diseño de campañas de comunicación",
				Department:  "marketing",
				Checklist: []string{
					"Definición de objetivos",
					"Campaña de Branding",
					"Campaña de Visibilidad",
					"Campaña de Alcance",
					"Calendario de publicaciones",
				},
				Deliverables: []string{
					"Plan de Marketing (PDF)",
					"Calendario editorial",
				},
			},
			{
				Title:       "Marketing de Contenidos",
				Description: "Estrategia de contenidos y posicionamiento orgánico",
				Department:  "marketing",
				Checklist: []string{
					"Estrategia de contenidos",
					"Plan de mantenimiento de blog",
					"Análisis de palabras clave",
					"Segmentación de público objetivo",
					"Gestión de presupuestos",
				},
				Deliverables: []string{
					"Estrategia SEO",
					"Informe de keywords",
				},
			},
			{
				Title:       "Gestión de Paid Media",
				Description: "Administración de campañas de publicidad pagada",
				Department:  "marketing",
				Checklist: []string{
					"Configuración de cuentas publicitarias",
					"Parametrización de campañas",
					"Creación de audiencias",
					"Optimización continua",
				},
				Deliverables: []string{
					"Informe de rendimiento de campañas",
					"Dashboard de seguimiento",
				},
			},
			{
				Title:       "Cuadros de Mando de Adquisición",
				Description: "Estructuración de dashboards y seguimiento",
				Department:  "marketing",
				Checklist: []string{
					"Definición de KPIs",
					"Estructuración de cuadros de mando",
					"Configuración de informes automáticos",
				},
				Deliverables: []string{
					"Dashboard de adquisición",
					"Informes mensuales",
				},
			},
		},
	},
	{
		ID:          "sales",
		Name:        "Atención Comercial",
		Description: "Argumentarios, training y seguimiento comercial",
		Icon:        "Briefcase",
		Color:       "emerald",
		DefaultCost: 3000,
		Tasks: []TaskTemplate{
			{
				Title:       "Argumentarios de Venta",
				Description: "Elaboración de argumentarios y highlights del programa",
				Department:  "comercial",
				Checklist: []string{
					"Identificación de highlights",
					"Redacción de argumentarios",
					"Validación con dirección",
					"Distribución al equipo comercial",
				},
				Deliverables: []string{
					"Documento de argumentarios",
					"Fichas de producto",
				},
			},
			{
				Title:       "Training Comercial",
				Description: "Formación y entrenamiento del equipo comercial",
				Department:  "comercial",
				Checklist: []string{
					"Elaboración de guías de venta",
					"Producción de vídeos formativos",
					"Sesiones de entrenamiento",
					"Liderazgo activo de equipos",
				},
				Deliverables: []string{
					"Material de apoyo comercial",
					"Vídeos de formación",
				},
			},
			{
				Title:       "Estrategia de Autogeneración",
				Description: "Project Managers 360º - Captación proactiva",
				Department:  "comercial",
				Checklist: []string{
					"Identificación de nichos",
					"Maniobras de captación",
					"Conversión de interés en matrículas",
					"Posicionamiento como autoridad",
				},
				Deliverables: []string{
					"Plan de autogeneración",
					"Informe de resultados",
				},
			},
			{
				Title:       "Cuadros de Mando Comercial",
				Description: "Seguimiento y reporting comercial",
				Department:  "direccion",
				Checklist: []string{
					"Estructuración de dashboards comerciales",
					"Configuración de informes",
					"Seguimiento de conversiones",
				},
				Deliverables: []string{
					"Dashboard comercial",
					"Informes de seguimiento",
				},
			},
		},
	},
	{
		ID:          "content",
		Name:        "Factoría de Contenidos y Cursos",
		Description: "Diseño instruccional y producción de cursos en LMS",
		Icon:        "BookOpen",
		Color:       "amber",
		DefaultCost: 5000,
		Tasks: []TaskTemplate{
			{
				Title:       "Diseño Instruccional",
				Description: "Diseño de estrategia pedagógica y contenidos",
				Department:  "contenido",
				Checklist: []string{
					"Diseño de estrategia pedagógica PreMáster",
					"Diseño de estrategia pedagógica Máster",
					"Coordinación de expertos",
					"Producción de contenidos",
					"Maquetación",
					"Revisión y mejora",
				},
				Deliverables: []string{
					"Diseño instruccional completo",
					"Contenidos maquetados",
				},
			},
			{
				Title:       "Preparación de Plataforma LMS",
				Description: "Diseño y parametrización de la plataforma de cursos",
				Department:  "contenido",
				Checklist: []string{
					"Diseño de plataforma",
					"Parametrización",
					"Diseño de cursos",
					"Preparación de espacios",
				},
				Deliverables: []string{
					"Plataforma configurada",
					"Estructura de cursos",
				},
			},
			{
				Title:       "Montaje de Contenidos en LMS",
				Description: "Carga y configuración de contenidos en la plataforma",
				Department:  "contenido",
				Checklist: []string{
					"Montaje de contenidos en módulos",
					"Configuración de seguimiento",
					"Configuración de dinamización",
					"Diseño de evaluaciones",
					"Parametrización de autoevaluaciones",
				},
				Deliverables: []string{
					"Contenidos montados",
					"Sistema de evaluación configurado",
				},
			},
			{
				Title:       "Sistemas de Streaming para Videoclases",
				Description: "Diseño y producción de entornos síncronos",
				Department:  "contenido",
				Checklist: []string{
					"Diseño de entornos de videoclase",
					"Producción de entornos síncronos",
					"Integración con calendario",
					"Pruebas de funcionamiento",
				},
				Deliverables: []string{
					"Entorno de videoclases operativo",
					"Manual para docentes",
				},
			},
		},
	},
	{
		ID:          "admin",
		Name:        "Gestión Administrativa y Financiera",
		Description: "Prematrículas, cuotas, pagos y comisiones",
		Icon:        "Calculator",
		Color:       "slate",
		DefaultCost: 2000,
		Tasks: []TaskTemplate{
			{
				Title:       "Gestión de Prematrículas",
				Description: "Cobro y gestión de prematrículas",
				Department:  "administracion",
				Checklist: []string{
					"Configuración de sistema de cobro",
					"Proceso de cobro de prematrículas",
					"Seguimiento de pagos",
					"Gestión de incidencias",
				},
				Deliverables: []string{
					"Informe de prematrículas",
					"Dashboard de seguimiento",
				},
			},
			{
				Title:       "Gestión de Cuotas de Financiación",
				Description: "Cobro de cuotas y gestión de impagos",
				Department:  "administracion",
				Checklist: []string{
					"Configuración de domiciliaciones",
					"Cobro de cuotas mensuales",
					"Gestión de impagos",
					"Cuadros de seguimiento",
				},
				Deliverables: []string{
					"Informe de cobros",
					"Informe de impagos",
				},
			},
			{
				Title:       "Pagos a Docentes",
				Description: "Gestión de pagos a profesorado y colaboradores",
				Department:  "administracion",
				Checklist: []string{
					"Registro de docentes troncales",
					"Registro de colaboradores externos",
					"Procesamiento de pagos",
					"Emisión de facturas",
				},
				Deliverables: []string{
					"Informe de pagos a docentes",
					"Registro contable",
				},
			},
			{
				Title:       "Comisiones Comerciales",
				Description: "Control y pago de comisiones al equipo comercial",
				Department:  "administracion",
				Checklist: []string{
					"Control de comisiones generadas",
					"Validación de comisiones",
					"Procesamiento de pagos",
					"Informe de comisiones",
				},
				Deliverables: []string{
					"Informe de comisiones",
					"Histórico de pagos",
				},
			},
		},
	},
	{
		ID:          "academic",
		Name:        "Gestión Académica",
		Description: "Calendarios, coordinación docente y actas",
		Icon:        "GraduationCap",
		Color:       "cyan",
		DefaultCost: 4000,
		Tasks: []TaskTemplate{
			{
				Title:       "Calendarios Académicos",
				Description: "Elaboración y seguimiento de calendarios",
				Department:  "academico",
				Checklist: []string{
					"Preparación de calendario base",
					"Apertura de módulos",
					"Cierre de módulos",
					"Seguimiento continuo",
				},
				Deliverables: []string{
					"Calendario académico completo",
					"Informe de cumplimiento",
				},
			},
			{
				Title:       "Coordinación Docente",
				Description: "Coordinación del profesorado de cada módulo",
				Department:  "academico",
				Checklist: []string{
					"Asignación de profesorado",
					"Revisión de contenidos por edición",
					"Coordinación con expertos externos",
					"Seguimiento de correcciones y feedbacks",
				},
				Deliverables: []string{
					"Plan de coordinación docente",
					"Informe de seguimiento",
				},
			},
			{
				Title:       "Dinamización de la Impartición",
				Description: "Dinamización y seguimiento personalizado",
				Department:  "academico",
				Checklist: []string{
					"Dinamización del grupo",
					"Seguimiento personalizado de alumnos",
					"Enlace con profesorado",
					"Enlace con dirección académica",
					"Enlace con administración",
				},
				Deliverables: []string{
					"Informe de dinamización",
					"Seguimiento de alumnos",
				},
			},
			{
				Title:       "Actas e Informes Académicos",
				Description: "Elaboración de documentación académica oficial",
				Department:  "academico",
				Checklist: []string{
					"Elaboración de actas",
					"Informes académicos",
					"Documentación para Universidad",
					"Gestión de calidad docente",
				},
				Deliverables: []string{
					"Actas oficiales",
					"Informes académicos",
					"Documentación universitaria",
				},
			},
		},
	},
}
